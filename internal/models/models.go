package models

import (
	"time"

	"github.com/google/uuid"
)

type UploadRequest struct {
	FileBytes []byte `json:"-"`
	Filename  string `json:"filename" validate:"required"`
	Quality   int    `json:"quality" validate:"min=0,max=100"`
}

type CompressedResult struct {
	Bytes        []byte
	Filename     string
	Format       string
	Width        int
	Height       int
	OriginalSize int
}

// CompressionEvent is the journal record of one successful compression.
// It never carries image bytes.
type CompressionEvent struct {
	ID             uuid.UUID `json:"id"`
	Filename       string    `json:"filename"`
	Format         string    `json:"format"`
	Quality        int       `json:"quality"`
	OriginalSize   int       `json:"original_size"`
	CompressedSize int       `json:"compressed_size"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
