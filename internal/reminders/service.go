package reminders

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
)

// CreateTaskInput is the body of a direct reminder request.
type CreateTaskInput struct {
	Title string     `json:"title" validate:"required,max=200"`
	Notes string     `json:"notes" validate:"max=2000"`
	Due   *time.Time `json:"due"`
}

// TaskDTO is returned after a reminder is created.
type TaskDTO struct {
	TaskID string     `json:"taskId"`
	Title  string     `json:"title"`
	Due    *time.Time `json:"due,omitempty"`
}

// Service creates reminders as the primary purpose of a request, so provider
// failures surface to the caller instead of being swallowed.
type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*TaskDTO, error)
}

type service struct {
	bridge Bridge
}

func NewService(bridge Bridge) (Service, error) {
	if bridge == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reminder bridge is required")
	}
	return &service{bridge: bridge}, nil
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*TaskDTO, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "GoogleAccessToken header is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	id, err := s.bridge.CreateTask(ctx, token, Task{Title: title, Notes: input.Notes, Due: input.Due})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "create reminder task")
	}
	return &TaskDTO{TaskID: id, Title: title, Due: input.Due}, nil
}
