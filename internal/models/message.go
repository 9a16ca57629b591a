package models

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	ID      string
	Role    Role
	Content string
}

func NewMessage(id string, role Role, content string) Message {
	return Message{
		ID:      id,
		Role:    role,
		Content: content,
	}
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
