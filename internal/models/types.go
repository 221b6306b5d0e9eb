package models

import (
	"strings"
)

// Message roles understood by the completion API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Intent is the category assigned to a user message. It drives template selection.
type Intent string

const (
	IntentEmergency        Intent = "EMERGENCY"
	IntentLegal            Intent = "LEGAL"
	IntentCybercrime       Intent = "CYBERCRIME"
	IntentEmotionalSupport Intent = "EMOTIONAL_SUPPORT"
	IntentGeneral          Intent = "GENERAL"
)

// Intents lists every label the classifier may emit.
func Intents() []Intent {
	return []Intent{
		IntentEmergency,
		IntentLegal,
		IntentCybercrime,
		IntentEmotionalSupport,
		IntentGeneral,
	}
}

// Valid reports whether i is one of the known labels.
func (i Intent) Valid() bool {
	for _, known := range Intents() {
		if i == known {
			return true
		}
	}
	return false
}

// ParseIntent cleans a raw classifier reply and maps it to a label.
// Anything that is not exactly a known label becomes IntentGeneral.
func ParseIntent(raw string) Intent {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	cleaned = strings.ReplaceAll(cleaned, `"`, "")

	intent := Intent(cleaned)
	if intent.Valid() {
		return intent
	}
	return IntentGeneral
}

// SafetyStatus tracks how safe the user currently is.
type SafetyStatus string

const (
	StatusSafe       SafetyStatus = "safe"
	StatusUnsafe     SafetyStatus = "unsafe"
	StatusMonitoring SafetyStatus = "monitoring"
)

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /chat
type ChatResponse struct {
	Reply     string `json:"reply"`
	ReplyHTML string `json:"reply_html,omitempty"`
}

// ErrorResponse is the body returned with non-2xx statuses
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
}
