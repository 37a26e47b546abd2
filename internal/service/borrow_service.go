package service

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/queue"
    "github.com/iliyamo/library-management/internal/repository"
)

// BorrowService drives a borrow record through its lifecycle. It is
// the only place in the system that changes a borrow's status, so the
// per-user and per-book invariants are enforced here and nowhere
// else. Each transition begins a transaction, locks the book row when
// inventory moves, mutates the borrow record and the available count
// together, and commits.
type BorrowService struct {
    store    TxBeginner
    borrows  BorrowStore
    books    InventoryStore
    bookings BookingStore
    users    UserDirectory
    policy   PolicyProvider
    notifier Notifier
    now      func() time.Time
}

// NewBorrowService constructs a BorrowService. All dependencies must
// be non-nil except notifier, which defaults to a no-op sink.
func NewBorrowService(store TxBeginner, borrows BorrowStore, books InventoryStore, bookings BookingStore, users UserDirectory, policy PolicyProvider, notifier Notifier) *BorrowService {
    if store == nil || borrows == nil || books == nil || bookings == nil || users == nil || policy == nil {
        panic("nil dependency passed to NewBorrowService")
    }
    if notifier == nil {
        notifier = nopNotifier{}
    }
    return &BorrowService{
        store:    store,
        borrows:  borrows,
        books:    books,
        bookings: bookings,
        users:    users,
        policy:   policy,
        notifier: notifier,
        now:      time.Now,
    }
}

// today returns the current date at UTC midnight. Due-date and expiry
// comparisons never look at clock time.
func (s *BorrowService) today() time.Time { return model.DateOnly(s.now()) }

// Create places a new borrow request. Preconditions, checked in
// order: the user exists, the book has at least one available copy,
// the user holds no non-terminal borrow for this book, the user is
// under the concurrent-borrow limit, and the user has no overdue
// borrows. On success a copy is reserved and the record starts in
// REQUESTED; the reservation and the record commit atomically.
func (s *BorrowService) Create(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
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
    if book.AvailableCopies <= 0 {
        return nil, fmt.Errorf("%w: book %d", ErrBookNotAvailable, bookID)
    }
    if _, err := s.borrows.CurrentTx(ctx, tx, userID, bookID); err == nil {
        return nil, fmt.Errorf("%w: user %d, book %d", ErrAlreadyBorrowed, userID, bookID)
    } else if !errors.Is(err, repository.ErrBorrowNotFound) {
        return nil, err
    }
    outstanding, err := s.borrows.CountNonTerminalByUserTx(ctx, tx, userID)
    if err != nil {
        return nil, err
    }
    if outstanding >= pol.BorrowBookLimit {
        return nil, fmt.Errorf("%w: user %d holds %d of %d", ErrBorrowLimitReached, userID, outstanding, pol.BorrowBookLimit)
    }
    overdue, err := s.borrows.CountByUserAndStatusTx(ctx, tx, userID, model.BorrowOverdue)
    if err != nil {
        return nil, err
    }
    if overdue > 0 {
        return nil, fmt.Errorf("%w: user %d has %d overdue", ErrHasOverdueBooks, userID, overdue)
    }

    if err := s.books.ReserveCopyTx(ctx, tx, bookID); err != nil {
        return nil, err
    }
    b := &model.Borrow{UserID: userID, BookID: bookID, Status: model.BorrowRequested}
    if err := s.borrows.CreateTx(ctx, tx, b); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    s.notifyStatus(ctx, queue.EventBorrowRequested, b, "borrow request created")
    return b, nil
}

// Accept approves a REQUESTED borrow and activates it immediately:
// the status becomes ACTIVE, the borrow date is today and the due
// date is today plus the policy's borrow-day limit. Availability is
// not re-checked; the copy was reserved at request time.
func (s *BorrowService) Accept(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
    return s.activate(ctx, userID, bookID, model.BorrowRequested)
}

// Activate moves an ACCEPTED borrow to ACTIVE with the same
// date-setting as Accept. It exists for workflows that separate
// acceptance from activation.
func (s *BorrowService) Activate(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
    return s.activate(ctx, userID, bookID, model.BorrowAccepted)
}

func (s *BorrowService) activate(ctx context.Context, userID, bookID uint64, from model.BorrowStatus) (*model.Borrow, error) {
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

    b, err := s.borrows.CurrentTx(ctx, tx, userID, bookID)
    if err != nil {
        return nil, err
    }
    if b.Status != from {
        return nil, fmt.Errorf("%w: borrow %d is %s, want %s", ErrInvalidTransition, b.ID, b.Status, from)
    }
    today := s.today()
    due := today.AddDate(0, 0, pol.BorrowDayLimit)
    b.Status = model.BorrowActive
    b.BorrowDate = &today
    b.DueDate = &due
    if err := s.borrows.UpdateTx(ctx, tx, b); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    s.notifyStatus(ctx, queue.EventBorrowStatus, b, "borrow activated")
    return b, nil
}

// Reject terminates a REQUESTED borrow and releases the reserved
// copy. Rejecting a borrow in any other state, or one that no longer
// has a non-terminal record, is an error, never an idempotent
// success. A freed copy is offered to the booking queue.
func (s *BorrowService) Reject(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
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

    b, err := s.borrows.CurrentTx(ctx, tx, userID, bookID)
    if err != nil {
        return nil, err
    }
    if b.Status != model.BorrowRequested {
        return nil, fmt.Errorf("%w: borrow %d is %s, only REQUESTED can be rejected", ErrInvalidTransition, b.ID, b.Status)
    }
    if err := s.books.ReleaseCopyTx(ctx, tx, bookID); err != nil {
        return nil, err
    }
    b.Status = model.BorrowRejected
    if err := s.borrows.UpdateTx(ctx, tx, b); err != nil {
        return nil, err
    }
    fulfilled, err := s.fulfillOldestTx(ctx, tx, bookID)
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    s.notifyStatus(ctx, queue.EventBorrowStatus, b, "borrow request rejected")
    s.notifyFulfilled(ctx, fulfilled)
    return b, nil
}

// Return completes an ACTIVE or OVERDUE borrow: the return date is
// set once, the status becomes RETURNED and the copy goes back to the
// ledger. The freed copy is offered to the oldest pending booking for
// the book inside the same transaction.
func (s *BorrowService) Return(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
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

    b, err := s.borrows.CurrentTx(ctx, tx, userID, bookID)
    if err != nil {
        if errors.Is(err, repository.ErrBorrowNotFound) {
            return nil, fmt.Errorf("%w: user %d, book %d", ErrNotBorrowed, userID, bookID)
        }
        return nil, err
    }
    if b.Status != model.BorrowActive && b.Status != model.BorrowOverdue {
        return nil, fmt.Errorf("%w: borrow %d is %s", ErrNotBorrowed, b.ID, b.Status)
    }
    today := s.today()
    b.ReturnDate = &today
    b.Status = model.BorrowReturned
    if err := s.borrows.UpdateTx(ctx, tx, b); err != nil {
        return nil, err
    }
    if err := s.books.ReleaseCopyTx(ctx, tx, bookID); err != nil {
        return nil, err
    }
    fulfilled, err := s.fulfillOldestTx(ctx, tx, bookID)
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    s.notifyStatus(ctx, queue.EventBorrowStatus, b, "book returned")
    s.notifyFulfilled(ctx, fulfilled)
    return b, nil
}

// Extend pushes the due date of an ACTIVE borrow out by seven days.
// It refuses once the policy's extension limit is used up, and
// refuses once the due date has passed even if the sweeper has not
// flipped the borrow to OVERDUE yet.
func (s *BorrowService) Extend(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
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

    b, err := s.borrows.CurrentTx(ctx, tx, userID, bookID)
    if err != nil {
        return nil, err
    }
    if b.Status != model.BorrowActive {
        return nil, fmt.Errorf("%w: borrow %d is %s", ErrNotExtendable, b.ID, b.Status)
    }
    if b.ExtensionCount >= pol.BorrowExtendLimit {
        return nil, fmt.Errorf("%w: borrow %d used %d of %d", ErrMaxExtensionsReached, b.ID, b.ExtensionCount, pol.BorrowExtendLimit)
    }
    if b.DueBefore(s.now()) {
        return nil, fmt.Errorf("%w: borrow %d was due %s", ErrAlreadyOverdue, b.ID, b.DueDate.Format("2006-01-02"))
    }
    due := b.DueDate.AddDate(0, 0, model.ExtensionDays)
    b.DueDate = &due
    b.ExtensionCount++
    if err := s.borrows.UpdateTx(ctx, tx, b); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return b, nil
}

// MarkPending reverts an ACTIVE borrow to REQUESTED. This models an
// administrative recall; the copy stays reserved because the user
// still holds it.
func (s *BorrowService) MarkPending(ctx context.Context, userID, bookID uint64) (*model.Borrow, error) {
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

    b, err := s.borrows.CurrentTx(ctx, tx, userID, bookID)
    if err != nil {
        return nil, err
    }
    if b.Status != model.BorrowActive {
        return nil, fmt.Errorf("%w: borrow %d is %s, only ACTIVE can be marked pending", ErrInvalidTransition, b.ID, b.Status)
    }
    b.Status = model.BorrowRequested
    if err := s.borrows.UpdateTx(ctx, tx, b); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    s.notifyStatus(ctx, queue.EventBorrowStatus, b, "borrow marked pending")
    return b, nil
}

// fulfillOldestTx offers a freed copy to the earliest PENDING booking
// for the book. The booking flips to FULFILLED inside the releasing
// transaction; no borrow is created automatically, the user is only
// notified that their reservation is ready. Returns nil when no
// pending booking exists.
func (s *BorrowService) fulfillOldestTx(ctx context.Context, tx repository.Tx, bookID uint64) (*model.Booking, error) {
    bk, err := s.bookings.OldestPendingTx(ctx, tx, bookID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return nil, nil
        }
        return nil, err
    }
    if err := s.bookings.UpdateStatusTx(ctx, tx, bk.ID, model.BookingPending, model.BookingFulfilled); err != nil {
        return nil, err
    }
    bk.Status = model.BookingFulfilled
    return bk, nil
}

// GetByID fetches a borrow record by id.
func (s *BorrowService) GetByID(ctx context.Context, id uint64) (*model.Borrow, error) {
    return s.borrows.GetByID(ctx, id)
}

// List returns borrow records matching the filter, newest first.
func (s *BorrowService) List(ctx context.Context, f repository.BorrowFilter) ([]model.Borrow, error) {
    return s.borrows.List(ctx, f)
}

// Stats aggregates borrow counts per status for reporting.
func (s *BorrowService) Stats(ctx context.Context) (model.BorrowStats, error) {
    return s.borrows.CountsByStatus(ctx)
}

func (s *BorrowService) notifyStatus(ctx context.Context, eventType string, b *model.Borrow, msg string) {
    s.notifier.Notify(ctx, queue.NotificationEvent{
        Type:        eventType,
        RecipientID: b.UserID,
        BookID:      b.BookID,
        BorrowID:    b.ID,
        Status:      string(b.Status),
        Message:     msg,
        OccurredAt:  s.now().UTC().Format(time.RFC3339),
    })
}

func (s *BorrowService) notifyFulfilled(ctx context.Context, bk *model.Booking) {
    if bk == nil {
        return
    }
    s.notifier.Notify(ctx, queue.NotificationEvent{
        Type:        queue.EventBookingReady,
        RecipientID: bk.UserID,
        BookID:      bk.BookID,
        BookingID:   bk.ID,
        Status:      string(bk.Status),
        Message:     "a reserved copy is ready to borrow",
        OccurredAt:  s.now().UTC().Format(time.RFC3339),
    })
}

// nopNotifier drops events; used when no broker is configured.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, queue.NotificationEvent) {}
