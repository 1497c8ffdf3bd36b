package places

import (
	"time"

	"Placemap/internal/core/geo"
)

// ReviewStatus is the moderation state of a place revision. The numeric
// values are persisted and preserve ordering: visibility filters rely on
// status >= StatusCreated.
type ReviewStatus int

const (
	StatusArchived  ReviewStatus = -2
	StatusRejected  ReviewStatus = -1
	StatusCreated   ReviewStatus = 0
	StatusConfirmed ReviewStatus = 1
)

// IsVisible reports whether a revision with this status is shown to readers
// and counted in statistics.
func (s ReviewStatus) IsVisible() bool {
	return s >= StatusCreated
}

func (s ReviewStatus) String() string {
	switch s {
	case StatusArchived:
		return "archived"
	case StatusRejected:
		return "rejected"
	case StatusCreated:
		return "created"
	case StatusConfirmed:
		return "confirmed"
	}
	return "unknown"
}

// ParseReviewStatus resolves a status name to its value.
func ParseReviewStatus(s string) (ReviewStatus, bool) {
	switch s {
	case "archived":
		return StatusArchived, true
	case "rejected":
		return StatusRejected, true
	case "created":
		return StatusCreated, true
	case "confirmed":
		return StatusConfirmed, true
	}
	return 0, false
}

// Activity records when a change happened and, optionally, the e-mail
// address of who made it.
type Activity struct {
	At time.Time `json:"at"`
	By string    `json:"by,omitempty"`
}

// Address is a postal address. All fields are optional.
type Address struct {
	Street  string `json:"street,omitempty"`
	Zip     string `json:"zip,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
}

// IsEmpty reports whether no address field is set.
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Location combines a geographic position with an optional address.
type Location struct {
	Pos     geo.Point `json:"pos"`
	Address *Address  `json:"address,omitempty"`
}

// Contact holds optional ways to reach the people behind a place or event.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// IsEmpty reports whether no contact field is set.
func (c Contact) IsEmpty() bool {
	return c == Contact{}
}

// Links holds optional web references of a place or event.
type Links struct {
	Homepage  string `json:"homepage,omitempty"`
	Image     string `json:"image,omitempty"`
	ImageHref string `json:"imageHref,omitempty"`
}

// IsEmpty reports whether no link is set.
func (l Links) IsEmpty() bool {
	return l == Links{}
}

// Place is one revision of a curated map entry. The id is stable across
// revisions; the license is immutable after creation. Tags are always
// normalized: sorted, deduplicated, free of whitespace and '#'.
type Place struct {
	ID           string   `json:"id"`
	License      string   `json:"license"`
	Revision     uint64   `json:"revision"`
	Created      Activity `json:"created"`
	OSMNode      *int64   `json:"osmNode,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     Location `json:"location"`
	OpeningHours string   `json:"openingHours,omitempty"`
	Contact      *Contact `json:"contact,omitempty"`
	Links        *Links   `json:"links,omitempty"`
	Tags         []string `json:"tags"`
}

// PlaceRevision is a place snapshot joined with its current review status.
type PlaceRevision struct {
	Place
	Status ReviewStatus `json:"status"`
}

// Review is one moderation action against a place revision. Review revs are
// contiguous per revision and the chain is append-only; the newest review's
// status equals the revision's current status.
type Review struct {
	Rev       uint64       `json:"rev"`
	Status    ReviewStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	CreatedBy string       `json:"createdBy,omitempty"`
	Context   string       `json:"context,omitempty"`
	Comment   string       `json:"comment,omitempty"`
}

// RevisionWithReviews is a historic revision together with its full review
// chain, newest review first.
type RevisionWithReviews struct {
	PlaceRevision
	Reviews []Review `json:"reviews"`
}

// PlaceHistory is the complete edit and moderation history of a place,
// newest revision first.
type PlaceHistory struct {
	ID        string                `json:"id"`
	License   string                `json:"license"`
	Revisions []RevisionWithReviews `json:"revisions"`
}
