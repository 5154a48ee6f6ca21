package assistant

import (
	"time"

	"ShortletAssistant/internal/entity"
)

// QueryTimeout bounds one chat answer on both the HTTP and websocket routes.
const QueryTimeout = 15 * time.Second

type QueryRequest struct {
	PropertyID string                    `json:"property_id" validate:"omitempty,max=64"`
	Utterance  string                    `json:"utterance" validate:"required,min=1,max=1000"`
	History    []entity.ConversationTurn `json:"history" validate:"omitempty,max=50,dive"`
}

type QueryResponse struct {
	QueryID        string   `json:"query_id,omitempty"`
	Query          string   `json:"query"`
	Intent         string   `json:"intent"`
	DocumentsFound int      `json:"documents_found"`
	Response       string   `json:"response"`
	Confidence     float64  `json:"confidence"`
	Escalate       bool     `json:"escalate"`
	Sources        []string `json:"sources"`
	Success        bool     `json:"success"`
}

type VoiceNoteResponse struct {
	Transcript string `json:"transcript"`
	QueryResponse
}

// VoiceWebhook is the form a telephony provider posts for every call step.
type VoiceWebhook struct {
	CallSid      string `form:"CallSid" validate:"required,max=64"`
	From         string `form:"From"`
	SpeechResult string `form:"SpeechResult"`
	CallStatus   string `form:"CallStatus"`
	PropertyID   string `query:"property_id" validate:"omitempty,max=64"`
}

type KnowledgeDocumentInput struct {
	ID       string `json:"id" validate:"required,max=64"`
	Category string `json:"category" validate:"required,oneof=policies amenities utilities booking general"`
	Content  string `json:"content" validate:"required,max=4000"`
}

type IndexKnowledgeRequest struct {
	Documents []KnowledgeDocumentInput `json:"documents" validate:"max=500,dive"`
}

type IndexKnowledgeResponse struct {
	PropertyID string `json:"property_id"`
	Indexed    int    `json:"indexed"`
}

type KnowledgeListResponse struct {
	PropertyID string                     `json:"property_id"`
	Documents  []entity.KnowledgeDocument `json:"documents"`
}

type BundleRequest struct {
	Key string `json:"key" validate:"required,max=512"`
}

type BundleResponse struct {
	Key        string `json:"key"`
	Location   string `json:"location,omitempty"`
	Properties int    `json:"properties"`
	Documents  int    `json:"documents"`
}

type AnalyticsRequest struct {
	Days int `query:"days" validate:"omitempty,min=1,max=365"`
}

type WSErrorFrame struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
