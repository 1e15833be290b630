package reminders_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders/reminderstest"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSideEffects(t *testing.T, bridge reminders.Bridge) (*reminders.SideEffects, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
	return reminders.NewSideEffects(bridge, logg, metrics.NewSideEffectMetrics(reg)), reg
}

func TestSideEffectsSkipWithoutToken(t *testing.T) {
	bridge := &reminderstest.Bridge{}
	fx, reg := newSideEffects(t, bridge)

	id := fx.CreateTask(context.Background(), reminders.KindBuyTask, reminders.Task{Title: "Buy milk"})

	assert.Empty(t, id)
	assert.Empty(t, bridge.Calls())
	count, err := testutil.GatherAndCount(reg, "side_effects_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSideEffectsPassesToken(t *testing.T) {
	bridge := &reminderstest.Bridge{}
	fx, _ := newSideEffects(t, bridge)
	ctx := reminders.WithToken(context.Background(), " tok ")

	id := fx.CreateTask(ctx, reminders.KindDefrostTask, reminders.Task{Title: reminders.DefrostTitle("chicken")})
	fx.RenameTask(ctx, reminders.KindDefrostTask, id, reminders.DefrostTitle("thighs"))
	fx.CompleteTask(ctx, reminders.KindDefrostTask, id)

	require.Equal(t, "task-1", id)
	calls := bridge.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "tok", calls[0].Token)
	assert.Equal(t, "Defrost chicken", calls[0].Title)
	assert.Equal(t, "Defrost thighs", calls[1].Title)
	assert.Equal(t, "complete_task", calls[2].Op)
}

func TestSideEffectsSwallowFailures(t *testing.T) {
	bridge := &reminderstest.Bridge{Err: errors.New("provider down")}
	fx, _ := newSideEffects(t, bridge)
	ctx := reminders.WithToken(context.Background(), "tok")

	assert.Empty(t, fx.CreateEvent(ctx, reminders.Event{Summary: "Tacos", Date: "2026-03-01"}))
	fx.DeleteEvent(ctx, "event-9")
	assert.Equal(t, []string{"create_event", "delete_event"}, bridge.Ops())
}

func TestSideEffectsIgnoreEmptyIDs(t *testing.T) {
	bridge := &reminderstest.Bridge{}
	fx, _ := newSideEffects(t, bridge)
	ctx := reminders.WithToken(context.Background(), "tok")

	fx.DeleteTask(ctx, reminders.KindBuyTask, "")
	fx.CompleteTask(ctx, reminders.KindBuyTask, "")
	fx.DeleteEvent(ctx, "")

	assert.Empty(t, bridge.Calls())
}

func TestNilSideEffectsIsNoop(t *testing.T) {
	var fx *reminders.SideEffects
	ctx := reminders.WithToken(context.Background(), "tok")
	assert.Empty(t, fx.CreateTask(ctx, reminders.KindBuyTask, reminders.Task{Title: "Buy eggs"}))
	fx.DeleteTask(ctx, reminders.KindBuyTask, "task-1")
}
