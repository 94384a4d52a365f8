package schemas

// ScheduleSessionSchema struct
type ScheduleSessionSchema struct {
	ExchangeID  string `validate:"required"`
	Link        string `validate:"required,max=1000"`
	ScheduledAt int64  `validate:"required"`
}

// SessionSchema struct
type SessionSchema struct {
	SessionID    string
	ExchangeID   string
	MentorID     string
	MenteeID     string
	Link         string
	ScheduledAt  int64
	Status       string
	Satisfied    bool
	SkillOffered string
}

// CompleteSessionSchema struct
type CompleteSessionSchema struct {
	Satisfied bool
}

// ProgressRequestSchema struct
type ProgressRequestSchema struct {
	RequestID     string
	ExchangeID    string
	MentorID      string
	MenteeID      string
	NextSession   int
	TotalSessions int
	Status        string
	Created       int64
}

// InboxSchema struct
type InboxSchema struct {
	Requests    []ExchangeSchema
	Sessions    []SessionSchema
	Progress    []ProgressRequestSchema
	UnreadCount int64
}
