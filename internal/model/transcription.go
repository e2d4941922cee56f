package model

import "time"

// Transcription is the stored text of one uploaded audio file.
type Transcription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptionCreatedEvent is published after a transcription is stored.
type TranscriptionCreatedEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TextLength int       `json:"text_length"`
	CreatedAt  time.Time `json:"created_at"`
}

// Event returns the domain event describing t.
func (t *Transcription) Event() TranscriptionCreatedEvent {
	return TranscriptionCreatedEvent{
		ID:         t.ID,
		UserID:     t.UserID,
		TextLength: len([]rune(t.Text)),
		CreatedAt:  t.CreatedAt,
	}
}
