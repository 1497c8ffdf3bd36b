package events

import (
	"time"

	"Placemap/internal/core/places"
)

// RegistrationType tells how attendees register for an event. The numeric
// values are persisted.
type RegistrationType int

const (
	RegistrationEmail    RegistrationType = 1
	RegistrationPhone    RegistrationType = 2
	RegistrationHomepage RegistrationType = 3
)

func (r RegistrationType) String() string {
	switch r {
	case RegistrationEmail:
		return "email"
	case RegistrationPhone:
		return "telephone"
	case RegistrationHomepage:
		return "homepage"
	}
	return "unknown"
}

// ParseRegistrationType resolves a registration type name,
// case-insensitively.
func ParseRegistrationType(s string) (RegistrationType, bool) {
	switch {
	case equalsFold(s, "email"):
		return RegistrationEmail, true
	case equalsFold(s, "telephone"):
		return RegistrationPhone, true
	case equalsFold(s, "homepage"):
		return RegistrationHomepage, true
	}
	return 0, false
}

func equalsFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Event is a time-bounded happening on the map. Unlike places, events carry
// no revision history; updates overwrite in place and archiving sets
// ArchivedAt.
type Event struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Start        time.Time         `json:"start"`
	End          *time.Time        `json:"end,omitempty"`
	Location     *places.Location  `json:"location,omitempty"`
	Contact      *places.Contact   `json:"contact,omitempty"`
	Homepage     string            `json:"homepage,omitempty"`
	Tags         []string          `json:"tags"`
	CreatedBy    string            `json:"createdBy,omitempty"` // user id
	Registration *RegistrationType `json:"registration,omitempty"`
	Organizer    string            `json:"organizer,omitempty"`
	ArchivedAt   *time.Time        `json:"archivedAt,omitempty"`
}

// HasAnyTag reports whether the event carries at least one of the given
// tags. An empty filter matches every event.
func (e *Event) HasAnyTag(tagList []string) bool {
	if len(tagList) == 0 {
		return true
	}
	for _, want := range tagList {
		for _, t := range e.Tags {
			if t == want {
				return true
			}
		}
	}
	return false
}
