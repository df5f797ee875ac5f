package api

// UploadResponse is returned on a successful POST /minio/upload. FileName is
// the stored object name (timestamp-prefixed), not the original filename.
type UploadResponse struct {
	Message  string `json:"message"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
