// Package model defines database models
package model

const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// Upload is the local record of one processing attempt. The media itself
// lives in object storage; this row only tracks what happened to it so
// failed attempts can be found and retried later.
type Upload struct {
	// FileID is the retention identifier, shared with the originals
	// namespace in the private bucket
	FileID       string `gorm:"primaryKey" json:"file_id"`
	OriginalName string `json:"name"`
	Mimetype     string `json:"mimetype"`
	Size         int64  `json:"size"`
	Status       string `json:"status"`
	// PreviewKey is set once a processed preview was uploaded
	PreviewKey   string `json:"preview_key"`
	ErrorMessage string `json:"error_message,omitzero"`
	Retries      int    `json:"retries"`
	// Unix millisecond timestamps
	CreatedAt int64 `gorm:"not null" json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}
