package assistant

import (
	"net/http"

	"ShortletAssistant/pkg/response"
)

var (
	ErrInvalidKnowledge       = response.NewCodedError(http.StatusBadRequest, "INVALID_KNOWLEDGE", "invalid knowledge documents")
	ErrInvalidBundle          = response.NewCodedError(http.StatusBadRequest, "INVALID_BUNDLE", "invalid knowledge bundle")
	ErrBundleNotFound         = response.NewCodedError(http.StatusNotFound, "BUNDLE_NOT_FOUND", "knowledge bundle not found")
	ErrStorageUnavailable     = response.NewCodedError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage is not configured")
	ErrPersistKnowledge       = response.NewCodedError(http.StatusInternalServerError, "PERSIST_FAILED", "failed to persist knowledge documents")
	ErrInvalidAudioFile       = response.NewCodedError(http.StatusBadRequest, "INVALID_AUDIO", "invalid audio file")
	ErrAudioFileTooLarge      = response.NewCodedError(http.StatusRequestEntityTooLarge, "AUDIO_TOO_LARGE", "audio file too large")
	ErrTranscriberUnavailable = response.NewCodedError(http.StatusServiceUnavailable, "TRANSCRIPTION_UNAVAILABLE", "transcription is not configured")
	ErrTranscriptionFailed    = response.NewCodedError(http.StatusBadGateway, "TRANSCRIPTION_FAILED", "failed to transcribe audio")
	ErrAnalyticsFailed        = response.NewCodedError(http.StatusInternalServerError, "ANALYTICS_FAILED", "failed to build analytics report")
)
