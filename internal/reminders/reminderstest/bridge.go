// Package reminderstest provides an in-process reminders.Bridge for tests.
package reminderstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
)

// Call records one bridge invocation.
type Call struct {
	Op    string
	Token string
	ID    string
	Title string
	Date  string
}

// Bridge records calls and hands out sequential ids. Set Err to make every
// call fail.
type Bridge struct {
	mu    sync.Mutex
	Err   error
	seq   int
	calls []Call
}

func (b *Bridge) record(c Call) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	return b.Err
}

func (b *Bridge) nextID(prefix string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

// Calls returns a copy of the recorded calls.
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Ops returns just the operation names, in order.
func (b *Bridge) Ops() []string {
	var out []string
	for _, c := range b.Calls() {
		out = append(out, c.Op)
	}
	return out
}

func (b *Bridge) CreateTask(_ context.Context, token string, task reminders.Task) (string, error) {
	id := b.nextID("task")
	if err := b.record(Call{Op: "create_task", Token: token, ID: id, Title: task.Title}); err != nil {
		return "", err
	}
	return id, nil
}

func (b *Bridge) RenameTask(_ context.Context, token, taskID, title string) error {
	return b.record(Call{Op: "rename_task", Token: token, ID: taskID, Title: title})
}

func (b *Bridge) CompleteTask(_ context.Context, token, taskID string) error {
	return b.record(Call{Op: "complete_task", Token: token, ID: taskID})
}

func (b *Bridge) DeleteTask(_ context.Context, token, taskID string) error {
	return b.record(Call{Op: "delete_task", Token: token, ID: taskID})
}

func (b *Bridge) CreateEvent(_ context.Context, token string, event reminders.Event) (string, error) {
	id := b.nextID("event")
	if err := b.record(Call{Op: "create_event", Token: token, ID: id, Title: event.Summary, Date: event.Date}); err != nil {
		return "", err
	}
	return id, nil
}

func (b *Bridge) DeleteEvent(_ context.Context, token, eventID string) error {
	return b.record(Call{Op: "delete_event", Token: token, ID: eventID})
}
