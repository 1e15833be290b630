package users

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
)

// touchInterval throttles last-seen writes on the per-request bootstrap.
const touchInterval = time.Hour

// Directory resolves users by uid and email. EnsureUser runs on every
// authenticated request so that a profile exists from the first call on.
type Directory interface {
	EnsureUser(ctx context.Context, uid, email string) (*Profile, error)
	ResolveEmail(ctx context.Context, email string) (string, error)
	EmailFor(ctx context.Context, uid string) (string, error)
}

type directory struct {
	repo  *Repository
	clock func() time.Time
}

func NewDirectory(repo *Repository, clock func() time.Time) (Directory, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &directory{repo: repo, clock: clock}, nil
}

func (d *directory) EnsureUser(ctx context.Context, uid, email string) (*Profile, error) {
	if err := docstore.ValidateID(uid); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid uid")
	}
	email = NormalizeEmail(email)
	now := d.clock().UTC()

	profile, err := d.repo.FindByID(ctx, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		profile = &Profile{UID: uid, Email: email, CreatedAt: now, LastSeenAt: now}
		if err := d.repo.Create(ctx, *profile); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return profile, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	if (email != "" && email != profile.Email) || now.Sub(profile.LastSeenAt) >= touchInterval {
		if email != "" {
			profile.Email = email
		}
		profile.LastSeenAt = now
		if err := d.repo.Touch(ctx, *profile); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
		}
	}
	return profile, nil
}

// ResolveEmail maps an address to a uid or returns NotFound.
func (d *directory) ResolveEmail(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	profile, err := d.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no user with that email")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by email")
	}
	return profile.UID, nil
}

// EmailFor returns the uid's address or NotFound.
func (d *directory) EmailFor(ctx context.Context, uid string) (string, error) {
	profile, err := d.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return profile.Email, nil
}
