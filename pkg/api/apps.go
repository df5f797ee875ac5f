package api

import "time"

// CreateAppRequest is the body of POST /minio/apps.
type CreateAppRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AppSummary is the public view of an app. APIKey is the obfuscated form of
// the stored hash (first4 + **** + last4), never the plaintext key.
type AppSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BucketName  string    `json:"bucketName"`
	APIKey      *string   `json:"apiKey"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateAppResponse is returned on app creation. APIKey is the plaintext key
// and is shown only here; afterwards only its hash exists.
type CreateAppResponse struct {
	BucketName string     `json:"bucketName"`
	APIKey     string     `json:"apiKey"`
	App        AppSummary `json:"app"`
}

// RegenerateKeyResponse is returned on POST /minio/apps/{id}/regenerate.
type RegenerateKeyResponse struct {
	Message string `json:"message"`
	APIKey  string `json:"apiKey"`
}
