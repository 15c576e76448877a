package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithGreeting(t *testing.T) {
	conv := New("Welcome")
	require.Equal(t, 1, conv.Len())
	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, Message{Role: RoleAssistant, Content: "Welcome"}, last)

	assert.True(t, New("").IsEmpty())
}

func TestFoldAssistantOnEmptyAppends(t *testing.T) {
	conv := Conversation{}
	for _, content := range []string{"H", "He", "Hel"} {
		conv = conv.FoldAssistant(content)
		require.Equal(t, 1, conv.Len())
		last, _ := conv.Last()
		assert.Equal(t, RoleAssistant, last.Role)
		assert.Equal(t, content, last.Content)
	}
}

func TestFoldAssistantGrowsByOneAfterUser(t *testing.T) {
	conv := New("Welcome").AddUser("Hi")
	before := conv.Len()

	conv = conv.FoldAssistant("H")
	assert.Equal(t, before+1, conv.Len())

	conv = conv.FoldAssistant("He")
	conv = conv.FoldAssistant("Hello")
	assert.Equal(t, before+1, conv.Len())

	messages := conv.Messages()
	assert.Equal(t, []Message{
		{Role: RoleAssistant, Content: "Welcome"},
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleAssistant, Content: "Hello"},
	}, messages)
}

func TestFoldAssistantReplacesGreetingTail(t *testing.T) {
	conv := New("Welcome").FoldAssistant("more")
	assert.Equal(t, []Message{{Role: RoleAssistant, Content: "more"}}, conv.Messages())
}

func TestOperationsDoNotMutatePrevious(t *testing.T) {
	start := New("Welcome").AddUser("Hi").FoldAssistant("H")
	next := start.FoldAssistant("Hello")

	last, _ := start.Last()
	assert.Equal(t, "H", last.Content)
	assert.False(t, start.Same(next))
	assert.True(t, next.Same(next))

	appended := start.AddUser("again")
	assert.Equal(t, 3, start.Len())
	assert.Equal(t, 4, appended.Len())
}

func TestMessagesReturnsCopy(t *testing.T) {
	conv := New("Welcome")
	messages := conv.Messages()
	messages[0].Content = "changed"
	last, _ := conv.Last()
	assert.Equal(t, "Welcome", last.Content)
}

func TestConsecutiveUserMessagesAllowed(t *testing.T) {
	conv := Conversation{}.AddUser("one").AddUser("  two ")
	require.Equal(t, 2, conv.Len())
	last, ok := conv.LastUser()
	require.True(t, ok)
	assert.Equal(t, "  two ", last.Content)
}

func TestFromMessagesRejectsUnknownRole(t *testing.T) {
	_, err := FromMessages([]Message{{Role: "system", Content: "x"}})
	assert.Error(t, err)

	conv, err := FromMessages([]Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, conv.Len())
}

func TestTurnAccumulates(t *testing.T) {
	var turn Turn
	assert.Equal(t, "H", turn.Add("H"))
	assert.Equal(t, "H", turn.Add(""))
	assert.Equal(t, "Hello", turn.Add("ello"))
	assert.Equal(t, "Hello", turn.Text())
	assert.Equal(t, 3, turn.Deltas())
}
