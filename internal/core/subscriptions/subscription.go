package subscriptions

import (
	"Placemap/internal/core/geo"
)

// BboxSubscription subscribes an e-mail address to changes of places inside a
// geographic bounding box.
type BboxSubscription struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Bbox  geo.Bbox `json:"bbox"`
}
