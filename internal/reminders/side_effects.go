package reminders

import (
	"context"

	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
)

const (
	KindDefrostTask = "defrost_task"
	KindBuyTask     = "buy_task"
	KindMealEvent   = "meal_event"
)

// SideEffects runs reminder calls on behalf of ledger and meal-plan writes.
// Failures are logged and counted, never returned. Calls are skipped when the
// request carried no provider token. A nil *SideEffects is a no-op.
type SideEffects struct {
	bridge  Bridge
	logg    *logger.Logger
	metrics *metrics.SideEffectMetrics
}

func NewSideEffects(bridge Bridge, logg *logger.Logger, m *metrics.SideEffectMetrics) *SideEffects {
	return &SideEffects{bridge: bridge, logg: logg, metrics: m}
}

func (s *SideEffects) token(ctx context.Context, kind string) (string, bool) {
	if s == nil || s.bridge == nil {
		return "", false
	}
	token := TokenFromContext(ctx)
	if token == "" {
		s.metrics.Inc(kind, metrics.OutcomeSkipped)
		return "", false
	}
	return token, true
}

func (s *SideEffects) done(ctx context.Context, kind, op string, err error) bool {
	if err == nil {
		s.metrics.Inc(kind, metrics.OutcomeApplied)
		return true
	}
	s.metrics.Inc(kind, metrics.OutcomeFailed)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"kind": kind, "op": op})
		s.logg.Error(ctx, "reminder.side_effect.failed", err)
	}
	return false
}

// CreateTask returns the new task id, or "" when skipped or failed.
func (s *SideEffects) CreateTask(ctx context.Context, kind string, task Task) string {
	token, ok := s.token(ctx, kind)
	if !ok {
		return ""
	}
	id, err := s.bridge.CreateTask(ctx, token, task)
	if !s.done(ctx, kind, "create", err) {
		return ""
	}
	return id
}

func (s *SideEffects) RenameTask(ctx context.Context, kind, taskID, title string) {
	if taskID == "" {
		return
	}
	token, ok := s.token(ctx, kind)
	if !ok {
		return
	}
	s.done(ctx, kind, "rename", s.bridge.RenameTask(ctx, token, taskID, title))
}

func (s *SideEffects) CompleteTask(ctx context.Context, kind, taskID string) {
	if taskID == "" {
		return
	}
	token, ok := s.token(ctx, kind)
	if !ok {
		return
	}
	s.done(ctx, kind, "complete", s.bridge.CompleteTask(ctx, token, taskID))
}

func (s *SideEffects) DeleteTask(ctx context.Context, kind, taskID string) {
	if taskID == "" {
		return
	}
	token, ok := s.token(ctx, kind)
	if !ok {
		return
	}
	s.done(ctx, kind, "delete", s.bridge.DeleteTask(ctx, token, taskID))
}

// CreateEvent returns the new event id, or "" when skipped or failed.
func (s *SideEffects) CreateEvent(ctx context.Context, event Event) string {
	token, ok := s.token(ctx, KindMealEvent)
	if !ok {
		return ""
	}
	id, err := s.bridge.CreateEvent(ctx, token, event)
	if !s.done(ctx, KindMealEvent, "create", err) {
		return ""
	}
	return id
}

func (s *SideEffects) DeleteEvent(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}
	token, ok := s.token(ctx, KindMealEvent)
	if !ok {
		return
	}
	s.done(ctx, KindMealEvent, "delete", s.bridge.DeleteEvent(ctx, token, eventID))
}
