package reminders

import (
	"context"
	"strings"
	"time"
)

// Task is a to-do reminder such as "Defrost chicken" or "Buy milk".
type Task struct {
	Title string
	Notes string
	Due   *time.Time
}

// Event is an all-day calendar entry. Date uses the 2006-01-02 layout.
type Event struct {
	Summary     string
	Description string
	Date        string
}

// Bridge talks to the user's task and calendar provider. Every call carries
// the provider access token supplied by the client on that request.
type Bridge interface {
	CreateTask(ctx context.Context, token string, task Task) (string, error)
	RenameTask(ctx context.Context, token, taskID, title string) error
	CompleteTask(ctx context.Context, token, taskID string) error
	DeleteTask(ctx context.Context, token, taskID string) error
	CreateEvent(ctx context.Context, token string, event Event) (string, error)
	DeleteEvent(ctx context.Context, token, eventID string) error
}

type tokenKey struct{}

// WithToken stores the provider access token for downstream side effects.
func WithToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFromContext returns the provider access token, or "" when the request had none.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

// DefrostTitle and BuyTitle name the tasks the ledger manages.
func DefrostTitle(ingredient string) string { return "Defrost " + ingredient }

func BuyTitle(ingredient string) string { return "Buy " + ingredient }
