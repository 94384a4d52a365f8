package schemas

// ProposeExchangeSchema struct
type ProposeExchangeSchema struct {
	ListingID string `validate:"required"`
}

// ExchangeSchema struct
type ExchangeSchema struct {
	ExchangeID        string
	ListingID         string
	RequesterID       string
	ProviderID        string
	PartnerUsername   string
	SkillOffered      string
	Status            string
	CompletedSessions int
	TotalSessions     int
	Rating            int
	Created           int64
}

// ExchangesSchema groups a user's exchanges by status
type ExchangesSchema struct {
	Pending   []ExchangeSchema
	Active    []ExchangeSchema
	Completed []ExchangeSchema
	Cancelled []ExchangeSchema
}

// ExchangeActionResponse struct
type ExchangeActionResponse struct {
	ExchangeID   string
	Status       string
	RefundedTo   string  `json:",omitempty"`
	RefundAmount float64 `json:",omitempty"`
}
