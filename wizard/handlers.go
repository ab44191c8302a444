package wizard

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/julienschmidt/httprouter"

	"tengri/booking"
	"tengri/capacity"
	"tengri/db"
	"tengri/filemgr"
	"tengri/manifest"
	"tengri/middleware"
	"tengri/models"
	"tengri/mq"
	"tengri/notify"
	"tengri/utils"
	"tengri/validate"
)

// One wizard session per authenticated actor. Sessions live for the process
// lifetime; a commit or reset returns them to the first step.
var (
	sessMu   sync.Mutex
	sessions = map[string]*Wizard{}

	coordMu sync.Mutex
	coord   *booking.Coordinator
)

// SetCoordinator lets main install a coordinator wired to the reconciler
// cache. Without it the handlers build a store-only one on first use.
func SetCoordinator(c *booking.Coordinator) {
	coordMu.Lock()
	defer coordMu.Unlock()
	coord = c
}

func coordinator() *booking.Coordinator {
	coordMu.Lock()
	defer coordMu.Unlock()
	if coord == nil {
		s := db.Store()
		coord = &booking.Coordinator{
			Tours:      s,
			Orders:     s,
			Passengers: s,
			Ledger:     s,
			Sink:       notify.LogSink{Tag: "WIZARD"},
			Emit:       mq.Emit,
		}
	}
	return coord
}

func sessionFor(userID string) *Wizard {
	sessMu.Lock()
	defer sessMu.Unlock()
	if w, ok := sessions[userID]; ok {
		return w
	}
	s := db.Store()
	w := New(
		capacity.Oracle{Tours: s, Orders: s, Passengers: s},
		notify.LogSink{Tag: "WIZARD"},
		validate.All,
	)
	sessions[userID] = w
	return w
}

func session(r *http.Request) (*Wizard, models.Actor) {
	actor := middleware.ActorFromContext(r.Context())
	return sessionFor(actor.UserID), actor
}

// GetState reports the step, draft passengers and chosen payment method.
func GetState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	wiz, _ := session(r)

	state := utils.M{
		"step":           wiz.Step().String(),
		"payment_method": wiz.PaymentMethod(),
	}
	if m := wiz.Manifest(); m != nil {
		state["tour_id"] = m.Tour().ID
		state["date"] = m.Date()
		state["passengers"] = m.Passengers()
	}
	utils.RespondWithJSON(w, http.StatusOK, state)
}

// SelectTour enters the passenger step for a (tour, date) pair.
func SelectTour(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		TourID string `json:"tour_id"`
		Date   string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TourID == "" || req.Date == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "tour_id and date are required")
		return
	}

	tour, err := db.Store().GetTour(r.Context(), req.TourID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
		return
	}

	wiz, _ := session(r)
	if err := wiz.SelectTour(r.Context(), tour, req.Date); err != nil {
		respondWizardError(w, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, utils.M{"step": wiz.Step().String()}, "Tour selected", nil)
}

// AddPassengers appends one or more blank passengers to the draft.
func AddPassengers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Count int `json:"count"`
	}
	// Empty body means one passenger.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Count < 1 {
		req.Count = 1
	}

	wiz, _ := session(r)
	ps, err := wiz.AddPassengers(r.Context(), req.Count)
	if err != nil {
		respondWizardError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, ps)
}

// UpdatePassenger applies one field edit to a draft passenger.
func UpdatePassenger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "field is required")
		return
	}

	wiz, _ := session(r)
	p, err := wiz.UpdatePassenger(ps.ByName("passengerid"), req.Field, req.Value)
	if err != nil {
		respondWizardError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// RemovePassenger deletes a draft passenger. Removing the last one is
// rejected; reset the wizard instead.
func RemovePassenger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	wiz, _ := session(r)
	if err := wiz.RemovePassenger(r.Context(), ps.ByName("passengerid")); err != nil {
		respondWizardError(w, err)
		return
	}
	m := wiz.Manifest()
	utils.RespondWithJSON(w, http.StatusOK, m.Passengers())
}

// UploadDocument stores a passport document for a draft passenger. A failed
// upload leaves the field unset and the passenger otherwise intact.
func UploadDocument(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	wiz, _ := session(r)
	m := wiz.Manifest()
	if m == nil {
		utils.RespondWithError(w, http.StatusConflict, "No active draft")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "document file is required")
		return
	}
	defer file.Close()

	path, err := filemgr.SaveDocument(file, header)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := m.SetDocument(ps.ByName("passengerid"), path); err != nil {
		respondWizardError(w, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, utils.M{"document_path": path}, "Document stored", nil)
}

// SetPayment records the payment method string. No charge is made.
func SetPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentMethod == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "payment_method is required")
		return
	}

	wiz, _ := session(r)
	if err := wiz.SetPaymentMethod(req.PaymentMethod); err != nil {
		respondWizardError(w, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Payment method set", nil)
}

// Review runs validation and advances to the commit step when clean.
func Review(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	wiz, _ := session(r)
	errs, err := wiz.Review(r.Context())
	if err != nil {
		respondWizardError(w, err)
		return
	}
	if len(errs) > 0 {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{
			"step":   wiz.Step().String(),
			"errors": errs,
		})
		return
	}
	utils.SendResponse(w, http.StatusOK, utils.M{"step": wiz.Step().String()}, "Ready to commit", nil)
}

// Commit persists the draft as an order. On success the session returns to
// the first step.
func Commit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	wiz, actor := session(r)

	if wiz.Step() != StepReviewAndCommit {
		respondWizardError(w, ErrWrongStep)
		return
	}
	m := wiz.Manifest()
	if m == nil {
		utils.RespondWithError(w, http.StatusConflict, "No active draft")
		return
	}

	order, err := coordinator().Commit(r.Context(), actor, m, wiz.PaymentMethod())
	if err != nil {
		var ce *booking.CommitError
		if errors.As(err, &ce) {
			utils.RespondWithJSON(w, commitStatus(ce.Kind), utils.M{
				"kind":   ce.Kind,
				"errors": ce.Fields,
			})
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Commit failed")
		return
	}

	wiz.Reset()
	utils.SendResponse(w, http.StatusCreated, order, "Booking committed", nil)
}

// Reset discards the draft and returns to tour selection.
func Reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	wiz, _ := session(r)
	wiz.Reset()
	utils.SendResponse(w, http.StatusOK, utils.M{"step": wiz.Step().String()}, "Wizard reset", nil)
}

func commitStatus(kind string) int {
	switch kind {
	case booking.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case booking.KindCapacityExceeded:
		return http.StatusConflict
	case booking.KindOracleUnavailable, booking.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case booking.KindPartialCommitFailure:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func respondWizardError(w http.ResponseWriter, err error) {
	var ve models.ValidationError
	switch {
	case errors.Is(err, ErrWrongStep):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNoSuchDate):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTourFull), errors.Is(err, ErrNotEnoughSeats):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, capacity.ErrUnavailable):
		utils.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, manifest.ErrFull), errors.Is(err, manifest.ErrLastPassenger):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, manifest.ErrNoSuchPassenger):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &ve):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{"errors": []models.ValidationError{ve}})
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
