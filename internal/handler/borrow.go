package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/repository"
    "github.com/iliyamo/library-management/internal/service"
)

// BorrowHandler exposes the borrow state machine over HTTP. Every
// transition is keyed by (user_id, book_id) taken from the request
// body; the core guarantees at most one non-terminal borrow per pair,
// so the pair identifies the record unambiguously.
type BorrowHandler struct {
    Borrows *service.BorrowService
}

// NewBorrowHandler constructs a BorrowHandler.
func NewBorrowHandler(borrows *service.BorrowService) *BorrowHandler {
    if borrows == nil {
        panic("nil service passed to NewBorrowHandler")
    }
    return &BorrowHandler{Borrows: borrows}
}

type borrowRequest struct {
    UserID uint64 `json:"user_id"`
    BookID uint64 `json:"book_id"`
}

func bindBorrowRequest(c echo.Context) (borrowRequest, bool) {
    var body borrowRequest
    if err := c.Bind(&body); err != nil || body.UserID == 0 || body.BookID == 0 {
        return body, false
    }
    return body, true
}

// Create handles POST /v1/borrows. On success the new record is in
// REQUESTED and one copy has been reserved.
func (h *BorrowHandler) Create(c echo.Context) error {
    body, ok := bindBorrowRequest(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and book_id are required"})
    }
    b, err := h.Borrows.Create(c.Request().Context(), body.UserID, body.BookID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, b)
}

// transition factors the shared shape of the status-change endpoints.
func (h *BorrowHandler) transition(c echo.Context, op func(userID, bookID uint64) (*model.Borrow, error)) error {
    body, ok := bindBorrowRequest(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and book_id are required"})
    }
    b, err := op(body.UserID, body.BookID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// Accept handles PUT /v1/borrows/accept.
func (h *BorrowHandler) Accept(c echo.Context) error {
    return h.transition(c, func(u, b uint64) (*model.Borrow, error) {
        return h.Borrows.Accept(c.Request().Context(), u, b)
    })
}

// Activate handles PUT /v1/borrows/activate.
func (h *BorrowHandler) Activate(c echo.Context) error {
    return h.transition(c, func(u, b uint64) (*model.Borrow, error) {
        return h.Borrows.Activate(c.Request().Context(), u, b)
    })
}

// Reject handles PUT /v1/borrows/reject.
func (h *BorrowHandler) Reject(c echo.Context) error {
    return h.transition(c, func(u, b uint64) (*model.Borrow, error) {
        return h.Borrows.Reject(c.Request().Context(), u, b)
    })
}

// Return handles PUT /v1/borrows/return.
func (h *BorrowHandler) Return(c echo.Context) error {
    return h.transition(c, func(u, b uint64) (*model.Borrow, error) {
        return h.Borrows.Return(c.Request().Context(), u, b)
    })
}

// Extend handles PUT /v1/borrows/extend.
func (h *BorrowHandler) Extend(c echo.Context) error {
    return h.transition(c, func(u, b uint64) (*model.Borrow, error) {
        return h.Borrows.Extend(c.Request().Context(), u, b)
    })
}

// MarkPending handles PUT /v1/borrows/pending.
func (h *BorrowHandler) MarkPending(c echo.Context) error {
    return h.transition(c, func(u, b uint64) (*model.Borrow, error) {
        return h.Borrows.MarkPending(c.Request().Context(), u, b)
    })
}

// GetByID handles GET /v1/borrows/:id.
func (h *BorrowHandler) GetByID(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    b, err := h.Borrows.GetByID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, b)
}

// List handles GET /v1/borrows with optional user_id, book_id and
// status query filters.
func (h *BorrowHandler) List(c echo.Context) error {
    var f repository.BorrowFilter
    var err error
    if f.UserID, err = queryID(c, "user_id"); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if f.BookID, err = queryID(c, "book_id"); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if raw := c.QueryParam("status"); raw != "" {
        status := model.BorrowStatus(raw)
        if !status.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
        }
        f.Status = &status
    }
    borrows, err := h.Borrows.List(c.Request().Context(), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, borrows)
}

// Stats handles GET /v1/borrows/stats and reports aggregate counts
// per status.
func (h *BorrowHandler) Stats(c echo.Context) error {
    stats, err := h.Borrows.Stats(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, stats)
}
