package service

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/library-management/internal/model"
)

// Sweeper applies the time-based transitions no user action triggers:
// ACTIVE borrows past their due date become OVERDUE and PENDING
// bookings past their expected available date become EXPIRED. Both
// updates are guarded by the current status, so running the sweep
// twice on the same day changes nothing the second time, and each
// record update is individually atomic, so a killed sweep leaves no
// partial transitions.
type Sweeper struct {
    borrows  interface {
        MarkOverdue(ctx context.Context, today time.Time) (int64, error)
    }
    bookings interface {
        ExpirePending(ctx context.Context, today time.Time) (int64, error)
    }
    now func() time.Time
}

// NewSweeper constructs a Sweeper over the borrow and booking stores.
func NewSweeper(borrows BorrowStore, bookings BookingStore) *Sweeper {
    if borrows == nil || bookings == nil {
        panic("nil store passed to NewSweeper")
    }
    return &Sweeper{borrows: borrows, bookings: bookings, now: time.Now}
}

// SweepResult reports how many records a sweep transitioned.
type SweepResult struct {
    OverdueMarked   int64 `json:"overdue_marked"`
    BookingsExpired int64 `json:"bookings_expired"`
}

// Run executes one sweep pass and returns the transition counts. It
// is intended to be invoked on a fixed interval by an external
// scheduler and is safe to run concurrently with normal operations.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
    today := model.DateOnly(s.now())
    var res SweepResult
    var err error
    if res.OverdueMarked, err = s.borrows.MarkOverdue(ctx, today); err != nil {
        return res, err
    }
    if res.BookingsExpired, err = s.bookings.ExpirePending(ctx, today); err != nil {
        return res, err
    }
    if res.OverdueMarked > 0 || res.BookingsExpired > 0 {
        log.Printf("sweeper: marked %d borrows overdue, expired %d bookings", res.OverdueMarked, res.BookingsExpired)
    }
    return res, nil
}

// RunEvery invokes Run on the given interval until the context is
// cancelled. Errors are logged and the loop keeps going; a missed
// pass is made up by the next one since the sweep is idempotent.
func (s *Sweeper) RunEvery(ctx context.Context, interval time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if _, err := s.Run(ctx); err != nil {
                log.Printf("sweeper: pass failed: %v", err)
            }
        }
    }
}
