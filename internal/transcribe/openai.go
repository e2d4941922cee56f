// Package transcribe relays uploaded audio to a speech-to-text service.
package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the upstream model identifier.
const DefaultModel = openai.AudioModelWhisper1

// Gateway errors.
var (
	// ErrUpstream covers non-2xx responses and malformed payloads.
	ErrUpstream = errors.New("transcription service failed")
	// ErrTimeout means the upstream did not answer before the deadline.
	ErrTimeout = errors.New("transcription service timed out")
)

// Transcriber turns a spooled audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *Spool) (string, error)
}

// OpenAIConfig configures the OpenAI gateway.
type OpenAIConfig struct {
	APIKey string
	// BaseURL defaults to https://api.openai.com/v1/.
	BaseURL string
	// Model defaults to DefaultModel.
	Model      string
	HTTPClient *http.Client
}

// OpenAI calls the audio transcriptions endpoint.
type OpenAI struct {
	client openai.Client
	model  openai.AudioModel
}

// NewOpenAI creates the gateway. Retries are disabled; a failed call is
// reported to the client as-is.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := openai.AudioModel(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Transcribe uploads audio as multipart form data and returns the text.
func (o *OpenAI) Transcribe(ctx context.Context, audio *Spool) (string, error) {
	f, err := audio.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	res, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: o.model,
	})
	if err != nil {
		return "", classify(ctx, err)
	}

	text, err := decodeText(res.RawJSON())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return text, nil
}

// decodeText requires a JSON object with a string "text" field.
func decodeText(raw string) (string, error) {
	var body struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if body.Text == nil {
		return "", errors.New("response has no text field")
	}
	return *body.Text, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d", ErrUpstream, apiErr.StatusCode)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
