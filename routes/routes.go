package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tengri/auth"
	"tengri/middleware"
	"tengri/models"
	"tengri/orders"
	"tengri/ratelim"
	"tengri/realtime"
	"tengri/tours"
	"tengri/wizard"
)

var staffRoles = []string{models.RoleProvider, models.RoleManager, models.RoleAdmin}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir("static/uploads"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.RegisterHandler))
	router.POST("/api/auth/login", rl.Limit(auth.LoginHandler))
}

func AddTourRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/tours", middleware.Authenticate(tours.GetTours))
	router.GET("/api/tours/:tourid", tours.GetTour)
	router.GET("/api/tours/:tourid/availability", tours.GetAvailability)

	router.POST("/api/tours", rl.Limit(middleware.Authenticate(middleware.RequireRole(tours.CreateTour, staffRoles...))))
	router.PUT("/api/tours/:tourid", rl.Limit(middleware.Authenticate(middleware.RequireRole(tours.EditTour, staffRoles...))))
	router.DELETE("/api/tours/:tourid", rl.Limit(middleware.Authenticate(middleware.RequireRole(tours.DeleteTour, staffRoles...))))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/orders", middleware.Authenticate(orders.GetOrders))
	router.GET("/api/orders/:orderid", middleware.Authenticate(orders.GetOrder))
	router.POST("/api/orders/:orderid/cancel", rl.Limit(middleware.Authenticate(orders.CancelOrder)))
	router.GET("/api/orders/:orderid/eticket", rl.Limit(middleware.Authenticate(orders.PrintETicket)))
}

func AddWizardRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/wizard", middleware.Authenticate(wizard.GetState))
	router.POST("/api/wizard/select-tour", rl.Limit(middleware.Authenticate(wizard.SelectTour)))
	router.POST("/api/wizard/passengers", rl.Limit(middleware.Authenticate(wizard.AddPassengers)))
	router.PUT("/api/wizard/passengers/:passengerid", middleware.Authenticate(wizard.UpdatePassenger))
	router.DELETE("/api/wizard/passengers/:passengerid", middleware.Authenticate(wizard.RemovePassenger))
	router.POST("/api/wizard/passengers/:passengerid/document", rl.Limit(middleware.Authenticate(wizard.UploadDocument)))
	router.POST("/api/wizard/payment", middleware.Authenticate(wizard.SetPayment))
	router.POST("/api/wizard/review", middleware.Authenticate(wizard.Review))
	router.POST("/api/wizard/commit", rl.Limit(middleware.Authenticate(wizard.Commit)))
	router.POST("/api/wizard/reset", middleware.Authenticate(wizard.Reset))
}

func AddSeatRoutes(router *httprouter.Router, hub *realtime.Hub) {
	router.GET("/ws/seats/:tourid/:date", hub.HandleWS)
}
