package schemas

// CreateListingSchema struct
type CreateListingSchema struct {
	SkillOffered string `validate:"required,max=100"`
	SkillWanted  string `validate:"required,max=100"`
	Category     string `validate:"required,max=50"`
	Description  string `validate:"omitempty,max=1000"`
}

// UpdateListingSchema struct
type UpdateListingSchema struct {
	Status string `validate:"required,oneof=active inactive"`
}

// ListingSchema struct
type ListingSchema struct {
	ListingID    string
	UserID       string
	Username     string
	SkillOffered string
	SkillWanted  string
	Category     string
	Description  string
	Status       string
	Created      int64
}
