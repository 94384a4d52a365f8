package events

const (
	message_received op_type = 100
	messages_read    op_type = 101
	chat_reset       op_type = 102
	typing           op_type = 110
	presence_changed op_type = 111
	block_changed    op_type = 120

	exchange_requested op_type = 200
	exchange_accepted  op_type = 201
	exchange_declined  op_type = 202
	exchange_cancelled op_type = 203
	exchange_completed op_type = 204

	progress_requested op_type = 210
	progress_confirmed op_type = 211

	session_scheduled op_type = 300
	session_reminder  op_type = 301

	unread_changed op_type = 310
)

type message_received_data struct {
	MessageID  string
	SenderID   string
	ReceiverID string
	Content    string
	Attachment string
	Created    int64
}

type messages_read_data struct {
	ReaderID string
	ReadAt   int64
}

type chat_reset_data struct {
	ResetBy string
	ResetAt int64
}

type typing_data struct {
	UserID string
	Typing bool
}

type presence_changed_data struct {
	UserID string
	Online bool
}

type block_changed_data struct {
	BlockerID string
	BlockedID string
	Blocked   bool
}

type exchange_event_data struct {
	ExchangeID  string
	ListingID   string
	RequesterID string
	ProviderID  string
	Status      string
}

type progress_event_data struct {
	RequestID   string
	ExchangeID  string
	MentorID    string
	MenteeID    string
	NextSession int
	Total       int
	Status      string
}

type session_event_data struct {
	SessionID   string
	ExchangeID  string
	Link        string
	ScheduledAt int64
}

type unread_changed_data struct {
	Total int64
}
