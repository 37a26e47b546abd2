package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-management/internal/repository"
    "github.com/iliyamo/library-management/internal/service"
)

// writeError translates core errors into HTTP responses. Not-found
// sentinels become 404 so callers can distinguish missing entities
// from rule violations, which become 409 with the precondition
// details carried in the error message. Anything unrecognized is a
// 500 without leaking internals.
func writeError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrUserNotFound),
        errors.Is(err, repository.ErrBookNotFound),
        errors.Is(err, repository.ErrBorrowNotFound),
        errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrBookNotAvailable),
        errors.Is(err, service.ErrAlreadyBorrowed),
        errors.Is(err, service.ErrBorrowLimitReached),
        errors.Is(err, service.ErrHasOverdueBooks),
        errors.Is(err, service.ErrInvalidTransition),
        errors.Is(err, service.ErrNotBorrowed),
        errors.Is(err, service.ErrNotExtendable),
        errors.Is(err, service.ErrMaxExtensionsReached),
        errors.Is(err, service.ErrAlreadyOverdue),
        errors.Is(err, service.ErrBookAvailable),
        errors.Is(err, service.ErrAlreadyBooked),
        errors.Is(err, repository.ErrOutOfStock),
        errors.Is(err, repository.ErrOverCapacity):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid " + name)
    }
    return id, nil
}

// queryID parses an optional positive integer query parameter,
// returning nil when the parameter is absent.
func queryID(c echo.Context, name string) (*uint64, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return nil, nil
    }
    id, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || id == 0 {
        return nil, errors.New("invalid " + name)
    }
    return &id, nil
}
