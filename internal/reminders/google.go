package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

const (
	providerTasks    = "google_tasks"
	providerCalendar = "google_calendar"
	dateLayout       = "2006-01-02"
	taskCompleted    = "completed"
)

// GoogleBridge implements Bridge on Google Tasks and Google Calendar. A
// fresh API client is built per call because the token belongs to the caller.
type GoogleBridge struct {
	taskList   string
	calendarID string
	timeout    time.Duration
	options    []option.ClientOption
	metrics    *metrics.ExternalCallMetrics
}

// GoogleOption customises the bridge.
type GoogleOption func(*GoogleBridge)

// WithClientOptions appends API client options, for example an endpoint override.
func WithClientOptions(opts ...option.ClientOption) GoogleOption {
	return func(b *GoogleBridge) {
		b.options = append(b.options, opts...)
	}
}

func WithMetrics(m *metrics.ExternalCallMetrics) GoogleOption {
	return func(b *GoogleBridge) {
		b.metrics = m
	}
}

// NewGoogleBridge builds a bridge for the configured task list and calendar.
func NewGoogleBridge(cfg config.RemindersConfig, opts ...GoogleOption) *GoogleBridge {
	b := &GoogleBridge{
		taskList:   cfg.TaskList,
		calendarID: cfg.Calendar,
		timeout:    cfg.Timeout,
	}
	if b.taskList == "" {
		b.taskList = "@default"
	}
	if b.calendarID == "" {
		b.calendarID = "primary"
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *GoogleBridge) clientOptions(token string) []option.ClientOption {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return append([]option.ClientOption{option.WithTokenSource(ts)}, b.options...)
}

func (b *GoogleBridge) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *GoogleBridge) tasksService(ctx context.Context, token string) (*tasks.Service, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reminder access token is required")
	}
	svc, err := tasks.NewService(ctx, b.clientOptions(token)...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "init tasks client")
	}
	return svc, nil
}

func (b *GoogleBridge) calendarService(ctx context.Context, token string) (*calendar.Service, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reminder access token is required")
	}
	svc, err := calendar.NewService(ctx, b.clientOptions(token)...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "init calendar client")
	}
	return svc, nil
}

func (b *GoogleBridge) observe(provider, operation string, start time.Time, err error) {
	b.metrics.Observe(provider, operation, time.Since(start), err)
}

func (b *GoogleBridge) CreateTask(ctx context.Context, token string, task Task) (id string, err error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { b.observe(providerTasks, "create_task", start, err) }()

	svc, err := b.tasksService(ctx, token)
	if err != nil {
		return "", err
	}
	body := &tasks.Task{Title: task.Title, Notes: task.Notes}
	if task.Due != nil {
		body.Due = task.Due.UTC().Format(time.RFC3339)
	}
	created, err := svc.Tasks.Insert(b.taskList, body).Context(ctx).Do()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "create task")
	}
	return created.Id, nil
}

func (b *GoogleBridge) RenameTask(ctx context.Context, token, taskID, title string) (err error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { b.observe(providerTasks, "rename_task", start, err) }()

	svc, err := b.tasksService(ctx, token)
	if err != nil {
		return err
	}
	if _, err := svc.Tasks.Patch(b.taskList, taskID, &tasks.Task{Title: title}).Context(ctx).Do(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "rename task")
	}
	return nil
}

func (b *GoogleBridge) CompleteTask(ctx context.Context, token, taskID string) (err error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { b.observe(providerTasks, "complete_task", start, err) }()

	svc, err := b.tasksService(ctx, token)
	if err != nil {
		return err
	}
	if _, err := svc.Tasks.Patch(b.taskList, taskID, &tasks.Task{Status: taskCompleted}).Context(ctx).Do(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "complete task")
	}
	return nil
}

func (b *GoogleBridge) DeleteTask(ctx context.Context, token, taskID string) (err error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { b.observe(providerTasks, "delete_task", start, err) }()

	svc, err := b.tasksService(ctx, token)
	if err != nil {
		return err
	}
	if err := svc.Tasks.Delete(b.taskList, taskID).Context(ctx).Do(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "delete task")
	}
	return nil
}

func (b *GoogleBridge) CreateEvent(ctx context.Context, token string, event Event) (id string, err error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { b.observe(providerCalendar, "create_event", start, err) }()

	day, err := time.Parse(dateLayout, event.Date)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid event date %q", event.Date))
	}
	svc, err := b.calendarService(ctx, token)
	if err != nil {
		return "", err
	}
	body := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &calendar.EventDateTime{Date: day.Format(dateLayout)},
		End:         &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format(dateLayout)},
	}
	created, err := svc.Events.Insert(b.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "create calendar event")
	}
	return created.Id, nil
}

func (b *GoogleBridge) DeleteEvent(ctx context.Context, token, eventID string) (err error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { b.observe(providerCalendar, "delete_event", start, err) }()

	svc, err := b.calendarService(ctx, token)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(b.calendarID, eventID).Context(ctx).Do(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "delete calendar event")
	}
	return nil
}
