package profile

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile: not found")

// Profile is the secondary user metadata stored apart from the identity
// provider's account record (docId = auth uid).
type Profile struct {
	ID          string    `json:"id" firestore:"id"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	IsAdmin     bool      `json:"isAdmin" firestore:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}
