package orders

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tengri/booking"
	"tengri/db"
	"tengri/eticket"
	"tengri/middleware"
	"tengri/models"
	"tengri/mq"
	"tengri/notify"
	"tengri/store"
	"tengri/utils"
)

func coordinator() *booking.Coordinator {
	s := db.Store()
	return &booking.Coordinator{
		Tours:      s,
		Orders:     s,
		Passengers: s,
		Ledger:     s,
		Sink:       notify.LogSink{Tag: "ORDERS"},
		Emit:       mq.Emit,
	}
}

// GetOrders lists orders scoped to the caller. Travelers see their own;
// staff see every visible order.
func GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor := middleware.ActorFromContext(r.Context())

	filter := store.OrderFilter{}
	if models.StaffRole(actor.Roles) {
		filter.VisibleOnly = true
	} else {
		filter.UserID = actor.UserID
	}

	list, err := db.Store().ListOrders(r.Context(), filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GetOrder returns one order with its passengers.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, passengers, status, msg := loadOrder(r, ps.ByName("orderid"))
	if msg != "" {
		utils.RespondWithError(w, status, msg)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"order":      order,
		"passengers": passengers,
	})
}

// CancelOrder cancels an order, releasing its seats back to the pool.
func CancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor := middleware.ActorFromContext(r.Context())

	order, err := coordinator().CancelOrder(r.Context(), actor, ps.ByName("orderid"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
		return
	}
	utils.SendResponse(w, http.StatusOK, order, "Order cancelled", nil)
}

// PrintETicket streams the confirmation PDF for an order.
func PrintETicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, passengers, status, msg := loadOrder(r, ps.ByName("orderid"))
	if msg != "" {
		utils.RespondWithError(w, status, msg)
		return
	}
	if order.Status == models.OrderCancelled {
		utils.RespondWithError(w, http.StatusConflict, "Order is cancelled")
		return
	}

	tour, err := db.Store().GetTour(r.Context(), order.TourID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch tour")
		return
	}

	pdf, err := eticket.Render(order, tour, passengers)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate e-ticket")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=eticket-"+order.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// loadOrder fetches an order plus passengers and enforces ownership. A
// non-empty message means the request already failed.
func loadOrder(r *http.Request, orderID string) (models.Order, []models.CommittedPassenger, int, string) {
	actor := middleware.ActorFromContext(r.Context())

	order, err := db.Store().GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Order{}, nil, http.StatusNotFound, "Order not found"
		}
		return models.Order{}, nil, http.StatusInternalServerError, "Failed to fetch order"
	}

	if order.UserID != actor.UserID && !models.StaffRole(actor.Roles) {
		return models.Order{}, nil, http.StatusForbidden, "Not allowed to view this order"
	}

	passengers, err := db.Store().ListByOrder(r.Context(), orderID)
	if err != nil {
		return models.Order{}, nil, http.StatusInternalServerError, "Failed to fetch passengers"
	}
	return order, passengers, http.StatusOK, ""
}
