package tool

import "github.com/google/uuid"

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateSessionID returns a prefixed internal checkout session id.
// UUIDv7 keeps ids roughly time-ordered for log correlation.
func GenerateSessionID() string {
	return "sess_" + GenerateUUIDV7()
}
