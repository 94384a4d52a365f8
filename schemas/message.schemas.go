package schemas

// SendMessageSchema struct
type SendMessageSchema struct {
	Content string `validate:"required,max=4000"`
}

// MessageSchema struct
type MessageSchema struct {
	MessageID  string
	SenderID   string
	ReceiverID string
	Content    string
	Attachment string
	Read       bool
	Created    int64
}

// ChatUserSchema is one entry of the chat user list
type ChatUserSchema struct {
	UserID    string
	Username  string
	AvatarURL string
	Blocked   bool
	Online    bool
	Unread    int64
}

// BlockUserSchema struct
type BlockUserSchema struct {
	Reason string `validate:"omitempty,max=500"`
}

// ConversationSchema is a message history page plus its watermark
type ConversationSchema struct {
	Messages []MessageSchema
	ResetAt  int64
}
