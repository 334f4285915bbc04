package domain

import "time"

// Tracked provides the bookkeeping fields shared by every mutable catalog entity.
// It gets embedded in Author and Book so the store can stamp them uniformly.
type Tracked struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   Version   `json:"version"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (t *Tracked) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (t *Tracked) InitTimestamps() {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}
