package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/library-management/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers the operational routes on the provided Echo
// instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterBorrows registers every borrow lifecycle endpoint under /v1.
// Creation and queries sit next to the explicit transition routes so the
// whole state machine is visible in one place.
func RegisterBorrows(e *echo.Echo, b *handler.BorrowHandler) {
    g := e.Group("/v1/borrows")
    // Create a new borrow request.  The request starts in REQUESTED and
    // reserves a copy immediately.
    g.POST("", b.Create)
    // Query endpoints.  Stats must be registered before the :id route so
    // Echo does not treat "stats" as an identifier.
    g.GET("/stats", b.Stats)
    g.GET("", b.List)
    g.GET("/:id", b.GetByID)
    // Transition endpoints.  Each one maps to a single state machine
    // edge, is keyed by the (user_id, book_id) pair in the request body
    // and returns 409 when the borrow is not in an eligible state.
    g.PUT("/accept", b.Accept)
    g.PUT("/activate", b.Activate)
    g.PUT("/reject", b.Reject)
    g.PUT("/return", b.Return)
    g.PUT("/extend", b.Extend)
    g.PUT("/pending", b.MarkPending)
}

// RegisterBookings registers the booking queue endpoints under /v1.
func RegisterBookings(e *echo.Echo, bk *handler.BookingHandler) {
    g := e.Group("/v1/bookings")
    // Place a booking for a book with no available copies.
    g.POST("", bk.Create)
    g.GET("", bk.List)
    g.GET("/:id", bk.GetByID)
    // Cancel a pending booking.  Fulfilled, expired and already cancelled
    // bookings are rejected with 409.
    g.PUT("/:id/cancel", bk.Cancel)
}

// RegisterAdmin registers the policy settings and sweep endpoints under
// /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler) {
    g := e.Group("/v1/admin")
    g.GET("/settings", a.GetSettings)
    // Each policy field is updated through its own path segment, e.g.
    // PUT /v1/admin/settings/borrow-day-limit with {"value": 21}.
    g.PUT("/settings/:field", a.UpdateSetting)
    // Run one overdue/expiry sweep pass immediately.
    g.POST("/sweep", a.Sweep)
}
