package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

// Profile is the users/{uid} document.
type Profile struct {
	UID        string    `json:"uid"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toFields(p Profile) docstore.Fields {
	return docstore.Fields{
		"uid":        p.UID,
		"email":      p.Email,
		"createdAt":  p.CreatedAt.UTC(),
		"lastSeenAt": p.LastSeenAt.UTC(),
	}
}

func fromFields(uid string, f docstore.Fields) Profile {
	p := Profile{UID: uid, Email: f.String("email")}
	if t, ok := f.Time("createdAt"); ok {
		p.CreatedAt = t
	}
	if t, ok := f.Time("lastSeenAt"); ok {
		p.LastSeenAt = t
	}
	return p
}
