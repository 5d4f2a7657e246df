package domain

import "time"

// Lid is one collectible manhole lid in the fixed catalog. The catalog is
// loaded once at seed time and never edited through the app.
type Lid struct {
	ID              int64
	RegionID        int64
	PrefectureID    *int64
	PrefectureOrder *int64
	CityName        string
	Address         string
	DifficultyCode  string
	ImageURL        *string
	// DisplayName is the lid's design names joined with " / " in display
	// order.
	DisplayName string
}

// LidSummary is a Lid annotated with ownership counts for one viewer.
type LidSummary struct {
	Lid
	SelfOwnedCount int64
	AnyOwnedCount  int64
}

// Ownership is how many units of one lid one account owns. A row with
// count <= 0 never exists; setting the count to zero deletes the row.
type Ownership struct {
	AccountID string
	LidID     int64
	Count     int64
	UpdatedAt time.Time
	// FirstGetAt advances only when the count rises above its previous
	// value for this (account, lid) pair.
	FirstGetAt time.Time
}

// Account is a registered collector.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Nickname     string
	Comment      string
	FriendCode   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an opaque login session. The token doubles as the cookie value.
type Session struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Selection is one staged ownership change in a bulk batch.
type Selection struct {
	LidID int64
	Count int64
}

// RecentEntry is one row of the recent-acquisitions feed.
type RecentEntry struct {
	LidID       int64
	CityName    string
	DisplayName string
	ImageURL    *string
	Nickname    string
	UpdatedAt   time.Time
}
