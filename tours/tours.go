package tours

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"tengri/capacity"
	"tengri/db"
	"tengri/middleware"
	"tengri/models"
	"tengri/mq"
	"tengri/store"
	"tengri/utils"
)

// GetTours lists tours. Travelers only see visible ones; staff see all.
func GetTours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actor := middleware.ActorFromContext(r.Context())
	visibleOnly := !models.StaffRole(actor.Roles)

	tours, err := db.Store().ListTours(ctx, visibleOnly)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch tours")
		return
	}
	if tours == nil {
		tours = []models.Tour{}
	}
	utils.RespondWithJSON(w, http.StatusOK, tours)
}

func GetTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tour, err := db.Store().GetTour(r.Context(), ps.ByName("tourid"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch tour")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tour)
}

// GetAvailability reports remaining seats for a tour date. The count is
// computed fresh on every call.
func GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tourID := ps.ByName("tourid")
	date := r.URL.Query().Get("date")
	if date == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	s := db.Store()
	oracle := capacity.Oracle{Tours: s, Orders: s, Passengers: s}
	avail, err := oracle.RemainingSeats(r.Context(), tourID, date)
	if err != nil {
		log.Printf("[TOURS] availability check failed for %s on %s: %v", tourID, date, err)
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Availability check unavailable")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, avail)
}

func CreateTour(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var tour models.Tour
	if err := json.NewDecoder(r.Body).Decode(&tour); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if tour.Title == "" || len(tour.Dates) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Title and at least one date are required")
		return
	}
	if tour.Capacity != nil && *tour.Capacity < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "Capacity must be positive when set")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	tour.ID = utils.GenerateRandomString(14)
	tour.CreatedBy = actor.UserID
	tour.Visible = true
	tour.CreatedAt = time.Now().Unix()

	if err := db.Store().InsertTour(r.Context(), tour); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create tour")
		return
	}

	mq.Emit(r.Context(), models.Change{
		Entity:   models.EntityTour,
		EntityID: tour.ID,
		TourID:   tour.ID,
		Action:   "created",
		Actor:    actor.UserID,
	})
	utils.SendResponse(w, http.StatusCreated, tour, "Tour created", nil)
}

func EditTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("tourid")

	existing, err := db.Store().GetTour(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
		return
	}

	var tour models.Tour
	if err := json.NewDecoder(r.Body).Decode(&tour); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if tour.Capacity != nil && *tour.Capacity < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "Capacity must be positive when set")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	tour.ID = id
	tour.CreatedBy = existing.CreatedBy
	tour.CreatedAt = existing.CreatedAt
	tour.UpdatedAt = time.Now().Unix()

	if err := db.Store().UpdateTour(r.Context(), tour); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update tour")
		return
	}

	mq.Emit(r.Context(), models.Change{
		Entity:   models.EntityTour,
		EntityID: id,
		TourID:   id,
		Action:   "updated",
		Actor:    actor.UserID,
	})
	utils.SendResponse(w, http.StatusOK, tour, "Tour updated", nil)
}

func DeleteTour(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("tourid")
	actor := middleware.ActorFromContext(r.Context())

	if err := db.Store().DeleteTour(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Tour not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete tour")
		return
	}

	mq.Emit(r.Context(), models.Change{
		Entity:   models.EntityTour,
		EntityID: id,
		TourID:   id,
		Action:   "deleted",
		Actor:    actor.UserID,
	})
	utils.SendResponse(w, http.StatusOK, nil, "Tour deleted", nil)
}
