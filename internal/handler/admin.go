package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-management/internal/service"
)

// AdminHandler exposes policy settings and the manual sweep trigger.
type AdminHandler struct {
    Settings *service.SettingsService
    Sweeper  *service.Sweeper
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(settings *service.SettingsService, sweeper *service.Sweeper) *AdminHandler {
    if settings == nil || sweeper == nil {
        panic("nil service passed to NewAdminHandler")
    }
    return &AdminHandler{Settings: settings, Sweeper: sweeper}
}

// GetSettings handles GET /v1/admin/settings.
func (h *AdminHandler) GetSettings(c echo.Context) error {
    settings, err := h.Settings.Policy(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, settings)
}

// UpdateSetting handles PUT /v1/admin/settings/:field. Each policy
// field has its own path so callers update exactly one value at a time.
func (h *AdminHandler) UpdateSetting(c echo.Context) error {
    var body struct {
        Value int `json:"value"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Value < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be at least 1"})
    }

    ctx := c.Request().Context()
    var set func() (interface{}, error)
    switch c.Param("field") {
    case "borrow-day-limit":
        set = func() (interface{}, error) { return h.Settings.SetBorrowDayLimit(ctx, body.Value) }
    case "borrow-extend-limit":
        set = func() (interface{}, error) { return h.Settings.SetBorrowExtendLimit(ctx, body.Value) }
    case "borrow-book-limit":
        set = func() (interface{}, error) { return h.Settings.SetBorrowBookLimit(ctx, body.Value) }
    case "booking-days-limit":
        set = func() (interface{}, error) { return h.Settings.SetBookingDaysLimit(ctx, body.Value) }
    default:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown setting"})
    }

    settings, err := set()
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, settings)
}

// Sweep handles POST /v1/admin/sweep and runs one sweep pass
// immediately, returning how many rows each phase touched.
func (h *AdminHandler) Sweep(c echo.Context) error {
    res, err := h.Sweeper.Run(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
