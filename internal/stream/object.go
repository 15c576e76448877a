package stream

import "github.com/tidwall/gjson"

// ParseObject parses one candidate and returns its content field. Invalid
// JSON, or a value that is not an object, yields a *DecodeError; an object
// whose content is missing or not a string yields a *SchemaError. When the
// key repeats, the last occurrence wins.
func ParseObject(candidate string) (string, error) {
	if !gjson.Valid(candidate) {
		return "", &DecodeError{Candidate: candidate}
	}
	obj := gjson.Parse(candidate)
	if !obj.IsObject() {
		return "", &DecodeError{Candidate: candidate, Reason: "not an object"}
	}

	var content gjson.Result
	found := false
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.String() == "content" {
			content = value
			found = true
		}
		return true
	})
	switch {
	case !found:
		return "", &SchemaError{Candidate: candidate, Reason: "missing content"}
	case content.Type != gjson.String:
		return "", &SchemaError{Candidate: candidate, Reason: "content is not a string"}
	}
	return content.String(), nil
}
