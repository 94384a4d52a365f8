package schemas

// ProfileSchema struct
type ProfileSchema struct {
	UserID      string
	Username    string
	Email       string
	Bio         string
	AvatarURL   string
	XP          int
	Level       int
	StreakCount int
	Credits     float64
	Badges      []BadgeSchema
	Created     int64
}

// UpdateProfileSchema struct
type UpdateProfileSchema struct {
	Username    string `validate:"omitempty,max=30"`
	Bio         string `validate:"omitempty,max=500"`
	AvatarURL   string `validate:"omitempty,url,max=1000"`
	DateOfBirth string `validate:"omitempty"`
}

// BadgeSchema struct
type BadgeSchema struct {
	BadgeType   string
	Name        string
	Icon        string
	Description string
	Created     int64
}

// PreferencesSchema struct
type PreferencesSchema struct {
	DarkMode      bool
	EmailNotif    bool
	CachedCredits float64
}

// DashboardSchema is the initial app state after login
type DashboardSchema struct {
	Profile     ProfileSchema
	Preferences PreferencesSchema
	UnreadCount int64
}
