package tokenpkg

import "time"

// Maker is an interface for managing access tokens.
type Maker interface {
	// CreateToken creates a new token for the given user id and duration.
	CreateToken(userID string, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid and returns its payload.
	VerifyToken(token string) (*Payload, error)
}
