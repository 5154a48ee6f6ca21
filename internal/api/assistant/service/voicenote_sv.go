package assistantService

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"ShortletAssistant/internal/api/assistant"
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/pkg/audio"
	contextPkg "ShortletAssistant/pkg/context"

	"github.com/sirupsen/logrus"
)

// VoiceNote transcribes a recorded question and answers it like a chat
// message.
func (s *assistantService) VoiceNote(
	ctx context.Context,
	file *multipart.FileHeader,
	req assistant.QueryRequest,
) (*assistant.VoiceNoteResponse, error) {
	if file == nil || !audio.SupportedFile(file.Filename) {
		return nil, assistant.ErrInvalidAudioFile
	}
	if file.Size > s.config.MaxAudioBytes {
		return nil, assistant.ErrAudioFileTooLarge
	}
	if s.transcriber == nil {
		return nil, assistant.ErrTranscriberUnavailable
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assistant.ErrInvalidAudioFile, err)
	}
	defer src.Close()

	transcript, err := s.transcriber.Transcribe(ctx, file.Filename, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"file":       file.Filename,
			"error":      err.Error(),
		}).Warn("Voice note transcription failed")
		if errors.Is(err, audio.ErrUnsupportedFormat) {
			return nil, assistant.ErrInvalidAudioFile
		}
		return nil, assistant.ErrTranscriptionFailed
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"file":       file.Filename,
		}).Warn("Voice note transcript is empty")
		return nil, assistant.ErrTranscriptionFailed
	}

	req.Utterance = transcript
	answer, err := s.Query(ctx, entity.ChannelChat, req)
	if err != nil {
		return nil, err
	}

	return &assistant.VoiceNoteResponse{Transcript: transcript, QueryResponse: *answer}, nil
}
