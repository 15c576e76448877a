// Package conversation holds the message list of a chat and folds streamed
// assistant text into it. Every operation returns a new Conversation; the
// backing array of a Conversation is never written after it is returned.
package conversation

import "fmt"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

type Conversation struct {
	messages []Message
}

// New starts a conversation, opening with an assistant greeting when one is
// given.
func New(greeting string) Conversation {
	if greeting == "" {
		return Conversation{}
	}
	return Conversation{messages: []Message{{Role: RoleAssistant, Content: greeting}}}
}

// FromMessages builds a conversation from an existing message list. Unknown
// roles are rejected.
func FromMessages(messages []Message) (Conversation, error) {
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return Conversation{}, fmt.Errorf("message %d: invalid role %q", i, msg.Role)
		}
	}
	return Conversation{messages: clone(messages, 0)}, nil
}

// AddUser appends a user message. Consecutive user messages are allowed.
func (c Conversation) AddUser(content string) Conversation {
	return c.add(Message{Role: RoleUser, Content: content})
}

// FoldAssistant applies the cumulative text of the streaming assistant turn.
// When the last message is not from the assistant a new assistant message is
// appended; otherwise the last message's content is replaced, not extended.
func (c Conversation) FoldAssistant(content string) Conversation {
	last, ok := c.Last()
	if !ok || !last.IsAssistant() {
		return c.add(Message{Role: RoleAssistant, Content: content})
	}
	messages := clone(c.messages, 0)
	messages[len(messages)-1].Content = content
	return Conversation{messages: messages}
}

func (c Conversation) Len() int {
	return len(c.messages)
}

func (c Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

func (c Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

func (c Conversation) LastUser() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].IsUser() {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// Messages returns a copy of the message list.
func (c Conversation) Messages() []Message {
	return clone(c.messages, 0)
}

// Same reports whether c and other share the same backing array, i.e. no
// operation happened between them.
func (c Conversation) Same(other Conversation) bool {
	if len(c.messages) != len(other.messages) {
		return false
	}
	if len(c.messages) == 0 {
		return true
	}
	return &c.messages[0] == &other.messages[0]
}

func (c Conversation) add(msg Message) Conversation {
	messages := clone(c.messages, 1)
	messages = append(messages, msg)
	return Conversation{messages: messages}
}

func clone(messages []Message, extra int) []Message {
	out := make([]Message, len(messages), len(messages)+extra)
	copy(out, messages)
	return out
}
