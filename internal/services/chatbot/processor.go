// Package chatbot turns one inbound chat message into one reply: slash
// commands, intent detection, safety state, prompt assembly and the LLM call.
package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sakhi-safety/sakhi-relay/internal/prompts"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sakhi-safety/sakhi-relay/internal/services/ai"
	"github.com/sakhi-safety/sakhi-relay/internal/services/session"
	"github.com/sirupsen/logrus"
)

const (
	replyTemperature = 0.4
	replyMaxTokens   = 150

	// HistoryWindow is how many past history entries are replayed to the model
	HistoryWindow = 6

	// DefaultTurnTimeout applies when NewProcessor is given no turn budget
	DefaultTurnTimeout = 50 * time.Second

	locationNotProvided = "Not Provided"
)

// Recorder receives processing events. middleware.Metrics implements it.
type Recorder interface {
	RecordCommandExecuted(command string)
	RecordIntent(intent, source string)
	RecordSafetyTransition(from, to string)
	RecordAlertSent()
	RecordCacheHit()
	RecordCacheMiss()
}

type nopRecorder struct{}

func (nopRecorder) RecordCommandExecuted(string)          {}
func (nopRecorder) RecordIntent(string, string)           {}
func (nopRecorder) RecordSafetyTransition(string, string) {}
func (nopRecorder) RecordAlertSent()                      {}
func (nopRecorder) RecordCacheHit()                       {}
func (nopRecorder) RecordCacheMiss()                      {}

// Processor owns the session and serialises turns against it
type Processor struct {
	// turn holds one token while a turn owns the session
	turn        chan struct{}
	turnTimeout time.Duration
	gateway     ai.Gateway
	classifier  *Classifier
	session     *session.Session
	catalog     *resources.Catalog
	localizer   *i18n.Localizer
	recorder    Recorder
	logger      *logrus.Logger
}

// NewProcessor wires a processor. turnTimeout bounds each ProcessMessage call
// from entry to reply; a non-positive value uses DefaultTurnTimeout.
func NewProcessor(
	gateway ai.Gateway,
	classifier *Classifier,
	sess *session.Session,
	catalog *resources.Catalog,
	localizer *i18n.Localizer,
	recorder Recorder,
	turnTimeout time.Duration,
	logger *logrus.Logger,
) *Processor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}
	return &Processor{
		turn:        make(chan struct{}, 1),
		turnTimeout: turnTimeout,
		gateway:     gateway,
		classifier:  classifier,
		session:     sess,
		catalog:     catalog,
		localizer:   localizer,
		recorder:    recorder,
		logger:      logger,
	}
}

// Session exposes the owned session for read-only inspection
func (p *Processor) Session() *session.Session {
	return p.session
}

// ProcessMessage produces the reply to one user message. Provider failures
// never surface as errors; they become fallback text with a helpline number.
// The turn, including the wait behind other turns, ends within the turn
// timeout; a provider that outlasts it is treated as a transport failure.
func (p *Processor) ProcessMessage(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.turnTimeout)
	defer cancel()

	select {
	case p.turn <- struct{}{}:
		defer func() { <-p.turn }()
	case <-ctx.Done():
		return p.abandonTurn(ctx)
	}

	if reply, handled := p.handleCommand(ctx, input); handled {
		return reply, nil
	}

	intent := p.determineIntent(ctx, input)

	from, to := p.session.ApplyTurn(intent, input)
	if from != to {
		p.recorder.RecordSafetyTransition(string(from), string(to))
	}

	systemPrompt, err := p.buildSystemPrompt(prompts.Lookup(intent))
	if err != nil {
		return "", fmt.Errorf("failed to build system prompt: %w", err)
	}

	history := p.session.RecentHistory(HistoryWindow)
	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.Message{Role: models.RoleUser, Content: input})

	result := p.gateway.Complete(ctx, messages, replyTemperature, replyMaxTokens)
	reply := ai.FallbackText(result, p.catalog, p.localizer)

	p.session.AppendExchange(input, reply)

	p.logger.WithFields(logrus.Fields{
		"intent":  intent,
		"status":  to,
		"outcome": result.Outcome.String(),
		"history": p.session.HistoryLen(),
	}).Info("Message processed")

	return reply, nil
}

// abandonTurn answers a turn that never got the session. A passed deadline
// still gets the helpline fallback; a cancelled caller gets the error.
// Neither touches the history.
func (p *Processor) abandonTurn(ctx context.Context) (string, error) {
	err := ctx.Err()
	if !errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	p.logger.WithField("turn_timeout", p.turnTimeout).Warn("Turn deadline passed while waiting for the session")
	return ai.FallbackText(ai.Result{Outcome: ai.OutcomeTransportError, Err: err}, p.catalog, p.localizer), nil
}

// handleCommand answers slash commands locally. Commands never reach the
// model and never touch the history.
func (p *Processor) handleCommand(ctx context.Context, input string) (string, bool) {
	lower := strings.ToLower(input)

	switch {
	case strings.HasPrefix(lower, "/location"):
		p.recorder.RecordCommandExecuted("location")
		arg := ""
		if idx := strings.IndexFunc(input, unicode.IsSpace); idx >= 0 {
			arg = input[idx+1:]
		}
		reply, _ := p.session.SetLocation(arg)
		return reply, true

	case lower == "/alert":
		p.recorder.RecordCommandExecuted("alert")
		p.recorder.RecordAlertSent()
		from := p.session.Status()
		reply := p.session.SendSafeCircleAlert(ctx)
		if from != models.StatusUnsafe {
			p.recorder.RecordSafetyTransition(string(from), string(models.StatusUnsafe))
		}
		return reply, true

	case lower == "/calm":
		p.recorder.RecordCommandExecuted("calm")
		var b strings.Builder
		b.WriteString(p.localizer.T(i18n.MsgCalmHeader, nil))
		for _, tip := range p.catalog.SelfCareTips() {
			b.WriteString("\n• ")
			b.WriteString(tip)
		}
		return b.String(), true
	}

	return "", false
}

func (p *Processor) determineIntent(ctx context.Context, input string) models.Intent {
	if intent, ok := KeywordIntent(input); ok {
		p.recorder.RecordIntent(string(intent), "keyword")
		return intent
	}
	return p.classifier.Classify(ctx, input)
}

// buildSystemPrompt joins persona, the current context block, the rules and
// the anti-repetition instruction. Maps are JSON encoded, which sorts keys.
func (p *Processor) buildSystemPrompt(tmpl prompts.Template) (string, error) {
	location, ok := p.session.Location()
	if !ok {
		location = locationNotProvided
	}

	sections := []struct {
		label string
		value interface{}
	}{
		{"Available Helplines", p.catalog.Helplines()},
		{"All Emergency Numbers", p.catalog.EmergencyNumbers()},
		{"Available NGOs", p.catalog.NGOs()},
		{"Available Legal Info", p.catalog.LegalInfo()},
	}

	var b strings.Builder
	b.WriteString(tmpl.Persona)
	b.WriteString("\n\nCURRENT CONTEXT:\n")
	fmt.Fprintf(&b, "- User's Safety Status: %s\n", p.session.Status())
	fmt.Fprintf(&b, "- User's Location: %s\n", location)
	for _, section := range sections {
		data, err := json.Marshal(section.value)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", section.label, err)
		}
		fmt.Fprintf(&b, "- %s: %s\n", section.label, data)
	}
	b.WriteString("\nRULES:\n")
	b.WriteString(tmpl.Rules)
	b.WriteString("\n\n")
	b.WriteString(prompts.AntiRepetitionRule)

	return b.String(), nil
}
