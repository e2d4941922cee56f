package dto

import (
	"time"

	"github.com/murmur/murmur/internal/model"
)

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Text string `json:"text"`
}

// TranscriptionResponse is one entry of GET /api/history.
type TranscriptionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ToTranscriptionResponses converts records, preserving order. The result
// is never nil so it encodes as [].
func ToTranscriptionResponses(items []*model.Transcription) []TranscriptionResponse {
	out := make([]TranscriptionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, TranscriptionResponse{
			ID:        t.ID,
			UserID:    t.UserID,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}
