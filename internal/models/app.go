package models

import "time"

// App represents a registered application with its own object-store bucket.
//
// APIKeyHash is the bcrypt hash of the app's API key; the plaintext key is
// returned exactly once, on creation or regeneration. BucketName is derived
// deterministically from Name and never changes afterwards.
type App struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	APIKeyHash  string    `json:"-"`
	BucketName  string    `json:"bucket_name"`
	CreatedAt   time.Time `json:"created_at"`
}
