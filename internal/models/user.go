package models

import "time"

// User represents an administrative user.
//
// AccessTokenHash and RefreshTokenHash hold bcrypt hashes of the currently
// issued tokens. A nil hash means no live session: a token that still passes
// signature and expiry checks is rejected once its stored hash is gone.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	AccessTokenHash  *string   `json:"-"`
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
