package models

// Change entities.
const (
	EntityTour      = "tour"
	EntityOrder     = "order"
	EntityPassenger = "passenger"
)

// Change is the change-feed payload. It says what changed, not how; the
// reconciler re-fetches the affected entity set in full.
type Change struct {
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
	TourID   string `json:"tour_id,omitempty"`
	Date     string `json:"date,omitempty"`
	Action   string `json:"action"` // created, updated, cancelled, deleted
	Actor    string `json:"actor,omitempty"`
}
