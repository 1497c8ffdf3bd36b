package orgs

import (
	"sort"
	"time"
)

// Organization is an external partner that owns a set of tags. A place may
// only gain or lose an owned tag when the edit is authorized by the owning
// organization, either directly via its API token or by a later review.
type Organization struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	APIToken  string   `json:"-"`
	OwnedTags []string `json:"ownedTags"`
}

// OwnsTag reports whether the organization owns the given tag.
func (o *Organization) OwnsTag(tag string) bool {
	for _, t := range o.OwnedTags {
		if t == tag {
			return true
		}
	}
	return false
}

// PendingAuthorization marks a place revision whose tag delta touched owned
// tags and awaits the owning organization's decision. The revision stays
// visible until a subsequent review rejects it.
type PendingAuthorization struct {
	PlaceID   string    `json:"placeId"`
	CreatedAt time.Time `json:"createdAt"`
	// LastAuthorizedRev is the most recent revision the organization had
	// authorized before this change, zero when the place is new to the org.
	LastAuthorizedRev uint64 `json:"lastAuthorizedRev,omitempty"`
}

// tagDelta returns the union of tags added and removed between the old and
// the new tag set. Both inputs must be normalized.
func tagDelta(oldTags, newTags []string) []string {
	oldSet := make(map[string]struct{}, len(oldTags))
	for _, t := range oldTags {
		oldSet[t] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newTags))
	for _, t := range newTags {
		newSet[t] = struct{}{}
	}
	var delta []string
	for t := range newSet {
		if _, ok := oldSet[t]; !ok {
			delta = append(delta, t)
		}
	}
	for t := range oldSet {
		if _, ok := newSet[t]; !ok {
			delta = append(delta, t)
		}
	}
	sort.Strings(delta)
	return delta
}
