package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/library-management/internal/model"
    "github.com/iliyamo/library-management/internal/queue"
    "github.com/iliyamo/library-management/internal/repository"
)

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBorrowLifecycle(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 3, 2)
    ctx := context.Background()

    b, err := f.borrows.Create(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowRequested, b.Status)
    assert.Nil(t, b.BorrowDate)
    assert.Equal(t, 1, f.state.books[10].AvailableCopies, "creating a request reserves one copy")

    b, err = f.borrows.Accept(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowActive, b.Status)
    require.NotNil(t, b.BorrowDate)
    require.NotNil(t, b.DueDate)
    assert.Equal(t, date(2025, 3, 10), *b.BorrowDate)
    assert.Equal(t, date(2025, 3, 24), *b.DueDate, "due date is today plus the 14-day loan period")
    assert.Equal(t, 1, f.state.books[10].AvailableCopies, "acceptance does not touch the ledger again")

    b, err = f.borrows.Extend(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, date(2025, 3, 31), *b.DueDate)
    assert.Equal(t, 1, b.ExtensionCount)

    b, err = f.borrows.Return(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowReturned, b.Status)
    require.NotNil(t, b.ReturnDate)
    assert.Equal(t, date(2025, 3, 10), *b.ReturnDate)
    assert.Equal(t, 2, f.state.books[10].AvailableCopies, "return puts the copy back")

    for _, tx := range f.state.txs {
        assert.True(t, tx.committed, "every successful transition commits its transaction")
    }
}

func TestAcceptedThenActivated(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowAccepted})
    ctx := context.Background()

    // Accept expects REQUESTED, so it refuses an ACCEPTED record.
    _, err := f.borrows.Accept(ctx, 1, 10)
    assert.ErrorIs(t, err, ErrInvalidTransition)

    b, err := f.borrows.Activate(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowActive, b.Status)
    assert.Equal(t, date(2025, 3, 24), *b.DueDate)
}

func TestCreateUnknownUser(t *testing.T) {
    f := defaultFixture()
    f.state.addBook(10, 1, 1)

    _, err := f.borrows.Create(context.Background(), 99, 10)
    assert.ErrorIs(t, err, repository.ErrUserNotFound)
    assert.Empty(t, f.state.borrows)
}

func TestCreateUnknownBook(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)

    _, err := f.borrows.Create(context.Background(), 1, 99)
    assert.ErrorIs(t, err, repository.ErrBookNotFound)
}

func TestCreateBookNotAvailable(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 2, 0)

    _, err := f.borrows.Create(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrBookNotAvailable)
    assert.Empty(t, f.state.borrows, "refusal leaves no record behind")
    assert.Equal(t, 0, f.state.books[10].AvailableCopies)
}

func TestCreateAlreadyBorrowed(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 3, 2)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive})

    _, err := f.borrows.Create(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrAlreadyBorrowed)
    assert.Equal(t, 2, f.state.books[10].AvailableCopies, "refusal does not move inventory")
}

func TestCreateTerminalRecordDoesNotBlock(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 3, 2)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowReturned})

    b, err := f.borrows.Create(context.Background(), 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowRequested, b.Status)
}

func TestCreateBorrowLimitReached(t *testing.T) {
    p := model.DefaultPolicySettings()
    p.BorrowBookLimit = 1
    f := newFixture(p)
    f.state.addUser(1)
    f.state.addBook(10, 1, 1)
    f.state.addBook(11, 1, 1)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 11, Status: model.BorrowActive})

    _, err := f.borrows.Create(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrBorrowLimitReached)
    assert.Equal(t, 1, f.state.books[10].AvailableCopies)
}

func TestCreateBlockedByOverdue(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 1)
    f.state.addBook(11, 1, 0)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 11, Status: model.BorrowOverdue})

    _, err := f.borrows.Create(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrHasOverdueBooks)
}

func TestRejectReleasesCopyAndFulfillsBooking(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    b := f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowRequested})
    bk := f.state.addBooking(model.Booking{
        UserID: 2, BookID: 10, Status: model.BookingPending,
        BookingDate: date(2025, 3, 1), ExpectedAvailableDate: date(2025, 3, 24),
    })
    ctx := context.Background()

    got, err := f.borrows.Reject(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, b.ID, got.ID)
    assert.Equal(t, model.BorrowRejected, got.Status)
    assert.Equal(t, 1, f.state.books[10].AvailableCopies)
    assert.Equal(t, model.BookingFulfilled, f.state.bookings[bk.ID].Status)

    ready := f.notifier.ofType(queue.EventBookingReady)
    require.Len(t, ready, 1)
    assert.Equal(t, uint64(2), ready[0].RecipientID)
    assert.Equal(t, bk.ID, ready[0].BookingID)
}

func TestRejectOnlyRequested(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive})

    _, err := f.borrows.Reject(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrInvalidTransition)
    assert.Equal(t, 0, f.state.books[10].AvailableCopies, "refused rejection does not free the copy")
}

func TestReturnFromOverdue(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    due := date(2025, 2, 20)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowOverdue, DueDate: &due})

    b, err := f.borrows.Return(context.Background(), 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowReturned, b.Status)
    assert.Equal(t, 1, f.state.books[10].AvailableCopies)
}

func TestReturnNotBorrowed(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 1)

    _, err := f.borrows.Return(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrNotBorrowed)
}

func TestReturnRequestedRefused(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowRequested})

    _, err := f.borrows.Return(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrNotBorrowed)
}

func TestReturnFulfillsOldestBookingFirst(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    due := date(2025, 3, 24)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive, DueDate: &due})
    // Same booking date; the lower id wins the tie.
    first := f.state.addBooking(model.Booking{
        UserID: 2, BookID: 10, Status: model.BookingPending,
        BookingDate: date(2025, 3, 5), ExpectedAvailableDate: date(2025, 3, 24),
    })
    second := f.state.addBooking(model.Booking{
        UserID: 3, BookID: 10, Status: model.BookingPending,
        BookingDate: date(2025, 3, 5), ExpectedAvailableDate: date(2025, 3, 24),
    })

    _, err := f.borrows.Return(context.Background(), 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BookingFulfilled, f.state.bookings[first.ID].Status)
    assert.Equal(t, model.BookingPending, f.state.bookings[second.ID].Status)
}

func TestExtendMaxReached(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    due := date(2025, 3, 24)
    f.state.addBorrow(model.Borrow{
        UserID: 1, BookID: 10, Status: model.BorrowActive,
        DueDate: &due, ExtensionCount: model.DefaultBorrowExtendLimit,
    })

    _, err := f.borrows.Extend(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrMaxExtensionsReached)
}

func TestExtendPastDueDate(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    // Due yesterday but not yet swept to OVERDUE.
    due := date(2025, 3, 9)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive, DueDate: &due})

    _, err := f.borrows.Extend(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrAlreadyOverdue)
}

func TestExtendOverdueRefused(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    due := date(2025, 3, 1)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowOverdue, DueDate: &due})

    _, err := f.borrows.Extend(context.Background(), 1, 10)
    assert.ErrorIs(t, err, ErrNotExtendable)
}

func TestExtendDueToday(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    due := date(2025, 3, 10)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive, DueDate: &due})

    b, err := f.borrows.Extend(context.Background(), 1, 10)
    require.NoError(t, err)
    assert.Equal(t, date(2025, 3, 17), *b.DueDate, "due today is still extendable")
}

func TestMarkPending(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    due := date(2025, 3, 24)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive, DueDate: &due})
    ctx := context.Background()

    b, err := f.borrows.MarkPending(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowRequested, b.Status)
    assert.Equal(t, 0, f.state.books[10].AvailableCopies, "the copy stays reserved")

    _, err = f.borrows.MarkPending(ctx, 1, 10)
    assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBorrowStats(t *testing.T) {
    f := defaultFixture()
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive})
    f.state.addBorrow(model.Borrow{UserID: 2, BookID: 10, Status: model.BorrowActive})
    f.state.addBorrow(model.Borrow{UserID: 3, BookID: 11, Status: model.BorrowReturned})

    s, err := f.borrows.Stats(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(3), s.Total)
    assert.Equal(t, int64(2), s.Active)
    assert.Equal(t, int64(1), s.Returned)
}
