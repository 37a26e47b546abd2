package service

import (
    "context"
    "fmt"
    "time"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/queue"
    "github.com/iliyamo/library-management/internal/repository"
)

// BookingService manages the queue of reservations for books that
// are out of available copies. Creation locks the book row so the
// availability check cannot race a concurrent return; fulfillment
// itself happens on the borrow side, inside the transaction that
// frees the copy.
type BookingService struct {
    store    TxBeginner
    bookings BookingStore
    books    InventoryStore
    users    UserDirectory
    policy   PolicyProvider
    notifier Notifier
    now      func() time.Time
}

// NewBookingService constructs a BookingService. All dependencies
// must be non-nil except notifier, which defaults to a no-op sink.
func NewBookingService(store TxBeginner, bookings BookingStore, books InventoryStore, users UserDirectory, policy PolicyProvider, notifier Notifier) *BookingService {
    if store == nil || bookings == nil || books == nil || users == nil || policy == nil {
        panic("nil dependency passed to NewBookingService")
    }
    if notifier == nil {
        notifier = nopNotifier{}
    }
    return &BookingService{
        store:    store,
        bookings: bookings,
        books:    books,
        users:    users,
        policy:   policy,
        notifier: notifier,
        now:      time.Now,
    }
}

// Create places a PENDING booking. Bookings exist only to queue for
// unavailable books, so a book with free copies refuses with
// ErrBookAvailable; a second pending booking for the same (user,
// book) pair refuses with ErrAlreadyBooked. When no expected date is
// supplied it is estimated as today plus the borrow-day limit; a
// supplied date is capped at today plus the booking-days horizon.
func (s *BookingService) Create(ctx context.Context, userID, bookID uint64, expected *time.Time) (*model.Booking, error) {
    ok, err := s.users.Exists(ctx, userID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, fmt.Errorf("%w: id %d", repository.ErrUserNotFound, userID)
    }
    pol, err := s.policy.Policy(ctx)
    if err != nil {
        return nil, err
    }

    tx, err := s.store.Begin(ctx)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    book, err := s.books.GetForUpdateTx(ctx, tx, bookID)
    if err != nil {
        return nil, err
    }
    if book.AvailableCopies > 0 {
        return nil, fmt.Errorf("%w: book %d has %d available", ErrBookAvailable, bookID, book.AvailableCopies)
    }
    pending, err := s.bookings.HasPendingTx(ctx, tx, userID, bookID)
    if err != nil {
        return nil, err
    }
    if pending {
        return nil, fmt.Errorf("%w: user %d, book %d", ErrAlreadyBooked, userID, bookID)
    }

    today := model.DateOnly(s.now())
    expectedDate := today.AddDate(0, 0, pol.BorrowDayLimit)
    if expected != nil {
        expectedDate = model.DateOnly(*expected)
        if horizon := today.AddDate(0, 0, pol.BookingDaysLimit); expectedDate.After(horizon) {
            expectedDate = horizon
        }
    }
    bk := &model.Booking{
        UserID:                userID,
        BookID:                bookID,
        Status:                model.BookingPending,
        BookingDate:           today,
        ExpectedAvailableDate: expectedDate,
    }
    if err := s.bookings.CreateTx(ctx, tx, bk); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    s.notifier.Notify(ctx, queue.NotificationEvent{
        Type:        queue.EventBookingCreated,
        RecipientID: bk.UserID,
        BookID:      bk.BookID,
        BookingID:   bk.ID,
        Status:      string(bk.Status),
        Message:     "booking placed, you will be notified when a copy frees up",
        OccurredAt:  s.now().UTC().Format(time.RFC3339),
    })
    return bk, nil
}

// Cancel moves a PENDING booking to CANCELLED. Any other status
// refuses with ErrInvalidTransition.
func (s *BookingService) Cancel(ctx context.Context, id uint64) (*model.Booking, error) {
    tx, err := s.store.Begin(ctx)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    bk, err := s.bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        return nil, err
    }
    if bk.Status != model.BookingPending {
        return nil, fmt.Errorf("%w: booking %d is %s, only PENDING can be cancelled", ErrInvalidTransition, bk.ID, bk.Status)
    }
    if err := s.bookings.UpdateStatusTx(ctx, tx, bk.ID, model.BookingPending, model.BookingCancelled); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    bk.Status = model.BookingCancelled
    return bk, nil
}

// GetByID fetches a booking by id.
func (s *BookingService) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return s.bookings.GetByID(ctx, id)
}

// List returns bookings matching the filter, newest first.
func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error) {
    return s.bookings.List(ctx, f)
}
