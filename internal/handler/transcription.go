package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/murmur/murmur/internal/auth"
	"github.com/murmur/murmur/internal/handler/dto"
	"github.com/murmur/murmur/internal/model"
	"github.com/murmur/murmur/internal/transcribe"
)

// AudioField is the multipart field carrying the upload.
const AudioField = "audio"

// multipartOverhead is allowed on top of the audio limit for boundaries and
// part headers.
const multipartOverhead = 64 << 10

// TranscriptionService is the transcription logic the handler needs.
type TranscriptionService interface {
	Transcribe(ctx context.Context, userID string, audio *transcribe.Spool) (*model.Transcription, error)
	History(ctx context.Context, userID string) ([]*model.Transcription, error)
}

// TranscriptionHandler handles uploads and history.
type TranscriptionHandler struct {
	svc       TranscriptionService
	logger    *slog.Logger
	uploadDir string
	maxUpload int64
}

// NewTranscriptionHandler creates a new TranscriptionHandler. uploadDir may
// be empty for os.TempDir.
func NewTranscriptionHandler(svc TranscriptionService, logger *slog.Logger, uploadDir string, maxUpload int64) *TranscriptionHandler {
	return &TranscriptionHandler{
		svc:       svc,
		logger:    logger,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
	}
}

// Upload handles POST /api/upload.
func (h *TranscriptionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	spool, err := h.spoolAudio(r)
	if err != nil {
		if errors.Is(err, errMissingAudio) {
			writeError(w, http.StatusBadRequest, "MISSING_AUDIO", "Multipart field \"audio\" is required")
			return
		}
		handleServiceError(h.logger, w, r, err)
		return
	}
	defer func() {
		if err := spool.Close(); err != nil {
			h.logger.Warn("failed to remove upload", "path", spool.Path(), "error", err)
		}
	}()

	record, err := h.svc.Transcribe(r.Context(), auth.UserIDFromContext(r.Context()), spool)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("transcription_created",
		"transcription_id", record.ID,
		"user_id", record.UserID,
		"filename", spool.Filename(),
		"audio_bytes", spool.Size(),
	)

	writeJSON(w, http.StatusOK, dto.UploadResponse{Text: record.Text})
}

// History handles GET /api/history.
func (h *TranscriptionHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.History(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTranscriptionResponses(items))
}

var errMissingAudio = errors.New("missing audio field")

// spoolAudio streams the multipart body and copies the first "audio" part
// to a temp file. Other parts are skipped.
func (h *TranscriptionHandler) spoolAudio(r *http.Request) (*transcribe.Spool, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, errMissingAudio
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errMissingAudio
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return nil, err
			}
			return nil, errMissingAudio
		}

		if part.FormName() != AudioField {
			_ = part.Close()
			continue
		}

		spool, err := transcribe.NewSpool(h.uploadDir, partFilename(part), part, h.maxUpload)
		_ = part.Close()
		return spool, err
	}
}

func partFilename(p *multipart.Part) string {
	if name := p.FileName(); name != "" {
		return name
	}
	return "audio"
}
