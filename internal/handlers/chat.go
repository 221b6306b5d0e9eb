package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sakhi-safety/sakhi-relay/pkg/markdown"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds the request body independently of the message length limit
const maxBodyBytes = 1 << 20

// emptyMessageLanguage pins the empty-message reply: clients match its exact text
const emptyMessageLanguage = "en"

// MessageProcessor produces the reply to one chat message
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, input string) (string, error)
}

// ChatRecorder receives request level events. middleware.Metrics implements it.
type ChatRecorder interface {
	RecordMessageReceived()
	RecordMessageProcessed(status string)
	RecordRateLimitExceeded()
}

// ChatHandler serves the chat API
type ChatHandler struct {
	processor MessageProcessor
	config    *config.ChatConfig
	catalog   *resources.Catalog
	localizer *i18n.Localizer
	recorder  ChatRecorder
	logger    *logrus.Logger
}

// NewChatHandler creates the chat API handler. A nil processor means the
// chatbot failed to initialise and /chat answers 500.
func NewChatHandler(
	processor MessageProcessor,
	cfg *config.ChatConfig,
	catalog *resources.Catalog,
	localizer *i18n.Localizer,
	recorder ChatRecorder,
	logger *logrus.Logger,
) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		config:    cfg,
		catalog:   catalog,
		localizer: localizer,
		recorder:  recorder,
		logger:    logger,
	}
}

// Initialized reports whether the chatbot is ready to answer
func (h *ChatHandler) Initialized() bool {
	return h.processor != nil
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.recordReceived()
	lang := h.language(r)

	var req models.ChatRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		h.logger.WithError(err).Debug("Rejected malformed chat request")
		h.recordProcessed("bad_request")
		h.writeError(w, http.StatusBadRequest, h.localizer.Get(lang, i18n.MsgBadRequest, nil))
		return
	}

	if h.processor == nil {
		h.recordProcessed("not_initialized")
		h.writeError(w, http.StatusInternalServerError, h.localizer.Get(lang, i18n.MsgNotInitialized, nil))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		h.recordProcessed("empty")
		h.writeReply(w, h.localizer.Get(emptyMessageLanguage, i18n.MsgEmptyMessage, nil))
		return
	}

	if limit := h.config.MaxMessageLength; limit > 0 && utf8.RuneCountInString(req.Message) > limit {
		h.recordProcessed("too_long")
		h.writeError(w, http.StatusBadRequest, h.localizer.Get(lang, i18n.MsgMessageTooLong, map[string]interface{}{"Limit": limit}))
		return
	}

	reply, err := h.processor.ProcessMessage(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Debug("Client went away before the reply was ready")
		} else {
			h.logger.WithError(err).Error("Failed to process message")
		}
		h.recordProcessed("error")
		h.InternalError(w, r)
		return
	}

	h.recordProcessed("ok")
	h.writeReply(w, reply)
}

// Health handles GET /health
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "ok",
		Initialized: h.Initialized(),
	})
}

// RateLimited answers requests rejected by the rate limiter
func (h *ChatHandler) RateLimited(w http.ResponseWriter, r *http.Request) {
	if h.recorder != nil {
		h.recorder.RecordRateLimitExceeded()
	}
	writeJSON(w, http.StatusTooManyRequests, models.ChatResponse{
		Reply: h.localizer.Get(h.language(r), i18n.MsgRateLimitExceeded, map[string]interface{}{
			"Number": h.catalog.Helpline(resources.NationalEmergency),
		}),
	})
}

// InternalError writes the generic 500 body. Internal details are never exposed.
func (h *ChatHandler) InternalError(w http.ResponseWriter, r *http.Request) {
	lang := h.language(r)
	h.writeError(w, http.StatusInternalServerError, h.localizer.Get(lang, i18n.MsgInternalError, nil))
}

// language picks the reply language for fixed texts from Accept-Language
func (h *ChatHandler) language(r *http.Request) string {
	return h.localizer.Match(r.Header.Get("Accept-Language"))
}

func (h *ChatHandler) writeReply(w http.ResponseWriter, reply string) {
	resp := models.ChatResponse{Reply: reply}
	if h.config.RenderHTML {
		resp.ReplyHTML = markdown.ToHTML(reply)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

func (h *ChatHandler) recordReceived() {
	if h.recorder != nil {
		h.recorder.RecordMessageReceived()
	}
}

func (h *ChatHandler) recordProcessed(status string) {
	if h.recorder != nil {
		h.recorder.RecordMessageProcessed(status)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		logrus.WithError(err).Warn("Failed to write response body")
	}
}
