// Package session holds the state of the single conversation the relay serves:
// safety status, last known location, chat history and the safe circle.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sirupsen/logrus"
)

// Session is safe for concurrent use
type Session struct {
	mu         sync.Mutex
	history    []models.Message
	status     models.SafetyStatus
	location   string
	safeCircle []string

	notifier  Notifier
	catalog   *resources.Catalog
	localizer *i18n.Localizer
	logger    *logrus.Logger
}

// New creates a session in the safe state with an empty history
func New(safeCircle []string, notifier Notifier, catalog *resources.Catalog, localizer *i18n.Localizer, logger *logrus.Logger) *Session {
	return &Session{
		status:     models.StatusSafe,
		safeCircle: append([]string(nil), safeCircle...),
		notifier:   notifier,
		catalog:    catalog,
		localizer:  localizer,
		logger:     logger,
	}
}

func (s *Session) Status() models.SafetyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Location returns the stored location and whether one was ever set
func (s *Session) Location() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, s.location != ""
}

func (s *Session) SafeCircle() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.safeCircle...)
}

// ApplyTurn runs the safety state machine for one message whose intent is known.
//
//	EMERGENCY                        -> unsafe
//	"safe" in message or GENERAL     -> unsafe becomes monitoring
//
// monitoring never goes back to safe on its own.
func (s *Session) ApplyTurn(intent models.Intent, rawInput string) (from, to models.SafetyStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = s.status
	switch {
	case intent == models.IntentEmergency:
		s.status = models.StatusUnsafe
	case strings.Contains(strings.ToLower(rawInput), "safe") || intent == models.IntentGeneral:
		if s.status == models.StatusUnsafe {
			s.status = models.StatusMonitoring
		}
	}

	if from != s.status {
		s.logger.WithFields(logrus.Fields{
			"from":   from,
			"to":     s.status,
			"intent": intent,
		}).Info("Safety status changed")
	}
	return from, s.status
}

// SetLocation stores the argument of a /location command. A blank argument
// leaves the location untouched and returns a usage hint with ok=false.
func (s *Session) SetLocation(arg string) (reply string, ok bool) {
	location := strings.TrimSpace(arg)
	if location == "" {
		return s.localizer.T(i18n.MsgLocationUsage, nil), false
	}

	s.mu.Lock()
	s.location = location
	s.mu.Unlock()

	s.logger.WithField("location", location).Info("User location updated")
	return s.localizer.T(i18n.MsgLocationSaved, map[string]interface{}{"Location": location}), true
}

// SendSafeCircleAlert notifies every trusted contact and marks the user unsafe.
// A failed send is logged and the remaining contacts are still tried.
func (s *Session) SendSafeCircleAlert(ctx context.Context) string {
	s.mu.Lock()
	s.status = models.StatusUnsafe
	contacts := append([]string(nil), s.safeCircle...)
	location := s.location
	s.mu.Unlock()

	locationInfo := s.localizer.T(i18n.MsgAlertLocationAbsent, nil)
	if location != "" {
		locationInfo = s.localizer.T(i18n.MsgAlertLocationKnown, map[string]interface{}{"Location": location})
	}
	alert := fmt.Sprintf("Emergency! Need help %s.", locationInfo)

	s.logger.WithField("contacts", len(contacts)).Warn("Sending alert to safe circle")
	delivered := 0
	for _, contact := range contacts {
		if err := s.notifier.Notify(ctx, contact, alert); err != nil {
			s.logger.WithError(err).WithField("contact", contact).Error("Failed to alert contact")
			continue
		}
		delivered++
	}
	s.logger.WithFields(logrus.Fields{
		"delivered": delivered,
		"failed":    len(contacts) - delivered,
	}).Info("Safe circle alert finished")

	return s.localizer.T(i18n.MsgAlertSent, map[string]interface{}{
		"LocationInfo": locationInfo,
		"Number":       s.catalog.Helpline(resources.NationalEmergency),
	})
}

// RecentHistory returns a copy of at most the last n history entries in order
func (s *Session) RecentHistory(n int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil
	}
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	return append([]models.Message(nil), s.history[start:]...)
}

// AppendExchange records one user message and the reply to it
func (s *Session) AppendExchange(userInput, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history,
		models.Message{Role: models.RoleUser, Content: userInput},
		models.Message{Role: models.RoleAssistant, Content: reply},
	)
}

func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
