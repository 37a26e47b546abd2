package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/repository"
    "github.com/iliyamo/library-management/internal/service"
)

// BookingHandler exposes the booking queue over HTTP.
type BookingHandler struct {
    Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
    if bookings == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings}
}

// Create handles POST /v1/bookings. The expected available date is
// optional and accepted as "YYYY-MM-DD"; when absent the core
// estimates it from the borrow-day limit.
func (h *BookingHandler) Create(c echo.Context) error {
    var body struct {
        UserID                uint64 `json:"user_id"`
        BookID                uint64 `json:"book_id"`
        ExpectedAvailableDate string `json:"expected_available_date"`
    }
    if err := c.Bind(&body); err != nil || body.UserID == 0 || body.BookID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and book_id are required"})
    }
    var expected *time.Time
    if body.ExpectedAvailableDate != "" {
        t, err := time.Parse("2006-01-02", body.ExpectedAvailableDate)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "expected_available_date must be YYYY-MM-DD"})
        }
        expected = &t
    }
    bk, err := h.Bookings.Create(c.Request().Context(), body.UserID, body.BookID, expected)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, bk)
}

// Cancel handles PUT /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    bk, err := h.Bookings.Cancel(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, bk)
}

// GetByID handles GET /v1/bookings/:id.
func (h *BookingHandler) GetByID(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    bk, err := h.Bookings.GetByID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, bk)
}

// List handles GET /v1/bookings with optional user_id, book_id and
// status query filters.
func (h *BookingHandler) List(c echo.Context) error {
    var f repository.BookingFilter
    var err error
    if f.UserID, err = queryID(c, "user_id"); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if f.BookID, err = queryID(c, "book_id"); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if raw := c.QueryParam("status"); raw != "" {
        status := model.BookingStatus(raw)
        if !status.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
        }
        f.Status = &status
    }
    bookings, err := h.Bookings.List(c.Request().Context(), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, bookings)
}
