package helpers

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Redis keys shared by the service and the middleware.

func KeySession(uid string) string    { return "user:session:" + uid }
func KeyResetToken(tok string) string { return "pwd:reset:token:" + tok }

// GenToken returns n random bytes, base64url encoded without padding.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SessionRecord is the JSON stored under KeySession. Only the token whose
// sid matches the stored one is accepted.
type SessionRecord struct {
	SID       string    `json:"sid"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
