package routes

import (
	"net/http"

	"fastbreakfast/auth"
	"fastbreakfast/booking"
	"fastbreakfast/menu"
	"fastbreakfast/middleware"
	"fastbreakfast/pay"
	"fastbreakfast/ratelim"

	"github.com/julienschmidt/httprouter"
)

var adminOnly = middleware.RequireRole("admin")

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/menupic/*filepath", http.Dir("static/menupic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/signup", ratelim.RateLimit(auth.Register))
	router.POST("/api/login", ratelim.RateLimit(auth.Login))
	router.GET("/api/me", middleware.Authenticate(auth.GetMe))

	router.POST("/api/otp/send", ratelim.RateLimit(auth.SendOtp))
	router.POST("/api/otp/verify", ratelim.RateLimit(auth.VerifyOtp))

	router.GET("/api/users", middleware.Authenticate(adminOnly(auth.GetUsers)))
	router.PUT("/api/users/:id/role", middleware.Authenticate(adminOnly(auth.UpdateUserRole)))
	router.DELETE("/api/users/:id", middleware.Authenticate(adminOnly(auth.DeleteUser)))
}

func AddMenuRoutes(router *httprouter.Router) {
	router.GET("/api/menu", middleware.OptionalAuth(menu.GetMenu))
	router.GET("/api/menu/:id", middleware.OptionalAuth(menu.GetMenuItem))
	router.POST("/api/menu", middleware.Authenticate(adminOnly(menu.AddMenuItem)))
	router.PUT("/api/menu/:id", middleware.Authenticate(adminOnly(menu.UpdateMenuItem)))
	router.DELETE("/api/menu/:id", middleware.Authenticate(adminOnly(menu.DeleteMenuItem)))
	router.POST("/api/menu/:id/image", middleware.Authenticate(adminOnly(menu.UploadMenuImage)))
}

func AddBookingRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", ratelim.RateLimit(middleware.Authenticate(booking.CreateBooking)))
	router.GET("/api/bookings", middleware.Authenticate(booking.GetBookings))
	router.GET("/api/bookings/availability", middleware.OptionalAuth(booking.GetAvailability))
	router.GET("/api/bookings/all", middleware.Authenticate(adminOnly(booking.GetAllBookings)))
	router.PUT("/api/bookings/cancel/:id", middleware.Authenticate(booking.CancelBooking))
	router.PUT("/api/bookings/complete/:id", middleware.Authenticate(adminOnly(booking.CompleteBooking)))
	router.PUT("/api/bookings/update/:id", ratelim.RateLimit(middleware.Authenticate(booking.UpdateBooking)))
	router.DELETE("/api/bookings/:id", middleware.Authenticate(booking.DeleteBooking))

	router.GET("/api/bookings/updates/:date", booking.HandleUpdates)
}

func AddPaymentRoutes(router *httprouter.Router) {
	router.POST("/api/payments/create-checkout-session", ratelim.RateLimit(middleware.Authenticate(pay.CreateCheckoutSession)))
	router.GET("/api/payments/verify/:sessionId", middleware.Authenticate(pay.VerifyPayment))
	router.GET("/api/payments/receipt/:sessionId", middleware.Authenticate(pay.GetReceipt))
}

func RoutesWrapper(router *httprouter.Router) {
	AddStaticRoutes(router)
	AddAuthRoutes(router)
	AddMenuRoutes(router)
	AddBookingRoutes(router)
	AddPaymentRoutes(router)
}
