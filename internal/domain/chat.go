package domain

// ChatRole identifies the author of a chat message sent to the completion
// provider.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in the ordered message sequence passed to the
// completion provider.
type ChatMessage struct {
	Role    ChatRole
	Content string
}
