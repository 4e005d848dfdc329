package domain

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Id      MsgId  `json:"id,omitempty"`
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// AttachmentPlaceholder is shown as the user message when only files were sent.
const AttachmentPlaceholder = "(attachment)"
