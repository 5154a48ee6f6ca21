package entity

import "time"

type ConversationRole string

const (
	RoleSystem    ConversationRole = "system"
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
)

// ConversationTurn is one message of a conversation. Guests may only send user
// and assistant turns; system turns are built by the service itself.
type ConversationTurn struct {
	Role    ConversationRole `json:"role" validate:"required,oneof=user assistant"`
	Content string           `json:"content" validate:"required"`
}

type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelVoice Channel = "voice"
)

type AssistantQuery struct {
	ID             string    `db:"id" json:"id"`
	Channel        Channel   `db:"channel" json:"channel"`
	PropertyID     string    `db:"property_id" json:"property_id"`
	Utterance      string    `db:"utterance" json:"utterance"`
	Intent         string    `db:"intent" json:"intent"`
	DocumentsFound int       `db:"documents_found" json:"documents_found"`
	Confidence     float64   `db:"confidence" json:"confidence"`
	Escalate       bool      `db:"escalate" json:"escalate"`
	Success        bool      `db:"success" json:"success"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type CallSession struct {
	CallID     string             `json:"call_id"`
	PropertyID string             `json:"property_id"`
	State      string             `json:"state"`
	Retries    int                `json:"retries"`
	History    []ConversationTurn `json:"history"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// EscalationEvent is pushed to the host when a guest is handed to a human.
type EscalationEvent struct {
	QueryID    string    `json:"query_id"`
	Channel    Channel   `json:"channel"`
	PropertyID string    `json:"property_id"`
	Utterance  string    `json:"utterance"`
	Intent     string    `json:"intent"`
	Response   string    `json:"response"`
	HostPhone  string    `json:"host_phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type IntentCount struct {
	Intent string `db:"intent" json:"intent"`
	Total  int    `db:"total" json:"total"`
}

type AssistantReport struct {
	Total          int           `json:"total"`
	Escalated      int           `json:"escalated"`
	Fallbacks      int           `json:"fallbacks"`
	EscalationRate float64       `json:"escalation_rate"`
	ByIntent       []IntentCount `json:"by_intent"`
	Since          time.Time     `json:"since"`
}
