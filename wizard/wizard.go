// Package wizard sequences one booking: pick a tour and date, assemble the
// passenger manifest, review and commit. The steps are linear; the only way
// back is a reset, which discards the draft.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tengri/capacity"
	"tengri/manifest"
	"tengri/models"
	"tengri/notify"
)

type Step int

const (
	StepSelectTour Step = iota
	StepManifestPassengers
	StepReviewAndCommit
)

func (s Step) String() string {
	switch s {
	case StepSelectTour:
		return "select_tour"
	case StepManifestPassengers:
		return "manifest_passengers"
	case StepReviewAndCommit:
		return "review_and_commit"
	}
	return "unknown"
}

var (
	ErrWrongStep = errors.New("operation not allowed in this step")
	// ErrTourFull means the oracle genuinely reported zero seats, as
	// opposed to capacity.ErrUnavailable when the check itself failed.
	ErrTourFull       = errors.New("tour is full")
	ErrNotEnoughSeats = errors.New("not enough seats for the manifest")
	ErrNoSuchDate     = errors.New("tour does not depart on that date")
)

// SeatOracle is the slice of the capacity oracle the wizard needs.
type SeatOracle interface {
	RemainingSeats(ctx context.Context, tourID, date string) (capacity.Availability, error)
}

// Validator recomputes the full error list for the review gate.
type Validator func(tour models.Tour, date string, passengers []models.DraftPassenger, paymentMethod string) []models.ValidationError

// Wizard drives a single actor's booking session.
type Wizard struct {
	mu       sync.Mutex
	step     Step
	oracle   SeatOracle
	sink     notify.Sink
	validate Validator
	man      *manifest.Manifest
	payment  string
}

func New(oracle SeatOracle, sink notify.Sink, v Validator) *Wizard {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Wizard{oracle: oracle, sink: sink, validate: v}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Manifest returns the current draft, nil before a tour is selected.
func (w *Wizard) Manifest() *manifest.Manifest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.man
}

func (w *Wizard) PaymentMethod() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.payment
}

// SelectTour enters ManifestPassengers. The seat check here is a
// point-in-time admission gate, not a reservation: seats can still vanish
// to another actor before commit.
func (w *Wizard) SelectTour(ctx context.Context, tour models.Tour, date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepSelectTour {
		return ErrWrongStep
	}
	if !tour.HasDate(date) {
		return ErrNoSuchDate
	}

	avail, err := w.oracle.RemainingSeats(ctx, tour.ID, date)
	if err != nil {
		w.sink.Notify(notify.Error, "seat availability could not be checked")
		return err
	}
	if !avail.Available {
		w.sink.Notify(notify.Error, "tour is fully booked for "+date)
		return ErrTourFull
	}

	w.man = manifest.New(tour, date)
	w.step = StepManifestPassengers
	return nil
}

// AddPassenger grows the manifest by one after consulting the oracle.
func (w *Wizard) AddPassenger(ctx context.Context) (models.DraftPassenger, error) {
	ps, err := w.AddPassengers(ctx, 1)
	if err != nil {
		return models.DraftPassenger{}, err
	}
	return ps[0], nil
}

// AddPassengers grows the manifest by n. Growth is blocked when the tour is
// full or the check fails; the two cases surface as different errors.
func (w *Wizard) AddPassengers(ctx context.Context, n int) ([]models.DraftPassenger, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepManifestPassengers {
		return nil, ErrWrongStep
	}
	if n < 1 {
		return nil, fmt.Errorf("invalid passenger count %d", n)
	}

	if err := w.admitLocked(ctx, n); err != nil {
		return nil, err
	}

	ps, err := w.man.CreateMany(n)
	if err != nil {
		return ps, err
	}
	w.announceSeatsLocked(ctx)
	return ps, nil
}

// UpdatePassenger forwards a field edit to the manifest.
func (w *Wizard) UpdatePassenger(id, field, value string) (models.DraftPassenger, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepManifestPassengers {
		return models.DraftPassenger{}, ErrWrongStep
	}
	return w.man.Update(id, field, value)
}

// RemovePassenger shrinks the manifest and refreshes the advisory count.
func (w *Wizard) RemovePassenger(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepManifestPassengers {
		return ErrWrongStep
	}
	if err := w.man.Remove(id); err != nil {
		return err
	}
	w.announceSeatsLocked(ctx)
	return nil
}

func (w *Wizard) SetPaymentMethod(pm string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepSelectTour {
		return ErrWrongStep
	}
	w.payment = pm
	return nil
}

// Review gates entry to ReviewAndCommit on a clean validation run. The
// error list is returned either way so the caller can render it.
func (w *Wizard) Review(ctx context.Context) ([]models.ValidationError, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepManifestPassengers {
		return nil, ErrWrongStep
	}

	errs := w.validate(w.man.Tour(), w.man.Date(), w.man.Passengers(), w.payment)
	if len(errs) > 0 {
		return errs, nil
	}
	w.step = StepReviewAndCommit
	return nil, nil
}

// Reset discards the draft and returns to SelectTour. Nothing was
// persisted, so no remote compensation is needed.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.man != nil {
		w.man.Clear()
	}
	w.man = nil
	w.payment = ""
	w.step = StepSelectTour
}

// admitLocked decides whether the manifest may grow by n.
func (w *Wizard) admitLocked(ctx context.Context, n int) error {
	avail, err := w.oracle.RemainingSeats(ctx, w.man.Tour().ID, w.man.Date())
	if err != nil {
		w.sink.Notify(notify.Error, "seat availability could not be checked")
		return err
	}
	if avail.Unlimited {
		return nil
	}
	if !avail.Available {
		w.sink.Notify(notify.Error, "tour full")
		return ErrTourFull
	}
	if w.man.Len()+n > avail.Seats {
		w.sink.Notify(notify.Error, fmt.Sprintf("only %d seats left", avail.Seats))
		return ErrNotEnoughSeats
	}
	return nil
}

// announceSeatsLocked surfaces "N seats left" after a mutation. Advisory
// only; the commit-time ledger write is the hard gate.
func (w *Wizard) announceSeatsLocked(ctx context.Context) {
	avail, err := w.oracle.RemainingSeats(ctx, w.man.Tour().ID, w.man.Date())
	if err != nil {
		w.sink.Notify(notify.Error, "seat availability could not be refreshed")
		return
	}
	if avail.Unlimited {
		return
	}
	if !avail.Available {
		w.sink.Notify(notify.Error, "tour full")
		return
	}
	w.sink.Notify(notify.Success, fmt.Sprintf("%d seats left", avail.Seats))
}
