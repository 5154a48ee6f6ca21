package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyTranscript   = errors.New("transcription returned no text")
)

var supportedExtensions = map[string]struct{}{
	".mp3": {}, ".mp4": {}, ".mpeg": {}, ".mpga": {}, ".m4a": {}, ".wav": {}, ".webm": {}, ".ogg": {}, ".oga": {},
}

type ITranscriber interface {
	Transcribe(ctx context.Context, fileName string, r io.Reader) (string, error)
}

type TranscriptionService struct {
	client   *openai.Client
	language string
}

// NewTranscriptionService uses OPENAI_API_KEY. TRANSCRIPTION_LANGUAGE is an
// optional ISO-639-1 hint.
func NewTranscriptionService() (*TranscriptionService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &TranscriptionService{
		client:   openai.NewClient(apiKey),
		language: os.Getenv("TRANSCRIPTION_LANGUAGE"),
	}, nil
}

func SupportedFile(fileName string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

func (t *TranscriptionService) Transcribe(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if !SupportedFile(fileName) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: fileName,
		Reader:   r,
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
