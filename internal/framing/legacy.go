package framing

import "strings"

const objectSeam = "}{"

// LegacySplitter cuts each fragment on the literal "}{" seam and restores the
// braces the cut removed. It never carries text between fragments, so an
// object split across two reads yields two unparsable candidates.
type LegacySplitter struct{}

func (LegacySplitter) Split(fragment string) []string {
	if fragment == "" {
		return nil
	}
	pieces := strings.Split(fragment, objectSeam)
	if len(pieces) == 1 {
		return pieces
	}
	last := len(pieces) - 1
	for i, piece := range pieces {
		switch i {
		case 0:
			pieces[i] = piece + "}"
		case last:
			pieces[i] = "{" + piece
		default:
			pieces[i] = "{" + piece + "}"
		}
	}
	return pieces
}

func (LegacySplitter) Flush() []string {
	return nil
}
