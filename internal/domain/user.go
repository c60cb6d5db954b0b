package domain

import "time"

// User is an entry in the user directory.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// EventBlob is an opaque calendar payload stored under a user. Index is the
// zero-based position within the user's list.
type EventBlob struct {
	Index   int
	UserID  string
	Payload string
	// Source names the generation path for pipeline-produced blobs; empty
	// for blobs submitted directly.
	Source    GenerationSource
	CreatedAt time.Time
	UpdatedAt time.Time
}
