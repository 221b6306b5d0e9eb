package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sakhi-safety/sakhi-relay/internal/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/models"
	"github.com/sakhi-safety/sakhi-relay/internal/resources"
	"github.com/sakhi-safety/sakhi-relay/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	mu      sync.Mutex
	sent    []string
	message string
	failFor map[string]bool
}

func (n *stubNotifier) Notify(ctx context.Context, contact, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = message
	if n.failFor[contact] {
		return errors.New("carrier rejected")
	}
	n.sent = append(n.sent, contact)
	return nil
}

func newTestSession(notifier Notifier, contacts ...string) *Session {
	return New(contacts, notifier, resources.Load(), i18n.MustDefault(), logger.Discard())
}

func TestApplyTurnTransitions(t *testing.T) {
	tests := []struct {
		name   string
		start  models.SafetyStatus
		intent models.Intent
		input  string
		want   models.SafetyStatus
	}{
		{"emergency from safe", models.StatusSafe, models.IntentEmergency, "he is following me", models.StatusUnsafe},
		{"emergency from monitoring", models.StatusMonitoring, models.IntentEmergency, "again", models.StatusUnsafe},
		{"general calms unsafe", models.StatusUnsafe, models.IntentGeneral, "ok thanks", models.StatusMonitoring},
		{"safe word calms unsafe", models.StatusUnsafe, models.IntentLegal, "I am SAFE now, what are my rights", models.StatusMonitoring},
		{"legal keeps unsafe", models.StatusUnsafe, models.IntentLegal, "what are my rights", models.StatusUnsafe},
		{"general keeps safe", models.StatusSafe, models.IntentGeneral, "hello", models.StatusSafe},
		{"monitoring never returns to safe", models.StatusMonitoring, models.IntentGeneral, "I am safe", models.StatusMonitoring},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(&stubNotifier{})
			s.status = tt.start

			from, to := s.ApplyTurn(tt.intent, tt.input)

			assert.Equal(t, tt.start, from)
			assert.Equal(t, tt.want, to)
			assert.Equal(t, tt.want, s.Status())
		})
	}
}

func TestSetLocation(t *testing.T) {
	s := newTestSession(&stubNotifier{})

	reply, ok := s.SetLocation("  Mumbai ")
	assert.True(t, ok)
	assert.Contains(t, reply, "Mumbai")
	loc, set := s.Location()
	assert.True(t, set)
	assert.Equal(t, "Mumbai", loc)

	reply, ok = s.SetLocation("   ")
	assert.False(t, ok)
	assert.Contains(t, reply, "/location Mumbai")
	loc, _ = s.Location()
	assert.Equal(t, "Mumbai", loc)
}

func TestSendSafeCircleAlert(t *testing.T) {
	notifier := &stubNotifier{}
	s := newTestSession(notifier, "+911", "+912")

	reply := s.SendSafeCircleAlert(context.Background())

	assert.Equal(t, models.StatusUnsafe, s.Status())
	assert.Equal(t, []string{"+911", "+912"}, notifier.sent)
	assert.Contains(t, reply, "112")
	assert.Contains(t, reply, "their last known location")
	assert.Contains(t, notifier.message, "their last known location")
}

func TestSendSafeCircleAlertWithLocationAndPartialFailure(t *testing.T) {
	notifier := &stubNotifier{failFor: map[string]bool{"+911": true}}
	s := newTestSession(notifier, "+911", "+912", "+913")
	s.SetLocation("Delhi")
	s.status = models.StatusMonitoring

	reply := s.SendSafeCircleAlert(context.Background())

	assert.Equal(t, models.StatusUnsafe, s.Status())
	assert.Equal(t, []string{"+912", "+913"}, notifier.sent)
	assert.Contains(t, reply, "at location Delhi")
	assert.Contains(t, reply, "112")
}

func TestRecentHistoryWindow(t *testing.T) {
	s := newTestSession(&stubNotifier{})
	assert.Empty(t, s.RecentHistory(6))

	for i := 0; i < 120; i++ {
		s.AppendExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	recent := s.RecentHistory(6)
	require.Len(t, recent, 6)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "q117"}, recent[0])
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Content: "a119"}, recent[5])
	assert.Equal(t, 240, s.HistoryLen())
	assert.Nil(t, s.RecentHistory(0))

	recent[0].Content = "mutated"
	assert.Equal(t, "q117", s.RecentHistory(6)[0].Content)
}

func TestLogNotifierHonoursContext(t *testing.T) {
	n := NewLogNotifier(0, logger.Discard())
	assert.NoError(t, n.Notify(context.Background(), "+911", "hi"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewLogNotifier(1<<30, logger.Discard())
	assert.ErrorIs(t, slow.Notify(ctx, "+911", "hi"), context.Canceled)
}
