package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/library-management/internal/model"
)

// The tests in this file walk multi-step flows across both services
// over one shared state, the way the system behaves in production.

func TestLastCopyContention(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addUser(2)
    f.state.addBook(10, 1, 1)
    ctx := context.Background()

    b, err := f.borrows.Create(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowRequested, b.Status)
    assert.Equal(t, 0, f.state.books[10].AvailableCopies)

    b, err = f.borrows.Accept(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowActive, b.Status)
    assert.Equal(t, date(2025, 3, 24), *b.DueDate)

    // The last copy is gone, so the second user cannot borrow.
    _, err = f.borrows.Create(ctx, 2, 10)
    assert.ErrorIs(t, err, ErrBookNotAvailable)

    // But they can queue, and the return fulfills their booking.
    bk, err := f.bookings.Create(ctx, 2, 10, nil)
    require.NoError(t, err)
    assert.Equal(t, model.BookingPending, bk.Status)

    _, err = f.borrows.Return(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, 1, f.state.books[10].AvailableCopies)
    assert.Equal(t, model.BookingFulfilled, f.state.bookings[bk.ID].Status)
}

func TestExtendUntilLimit(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 1)
    ctx := context.Background()

    _, err := f.borrows.Create(ctx, 1, 10)
    require.NoError(t, err)
    _, err = f.borrows.Accept(ctx, 1, 10)
    require.NoError(t, err)

    b, err := f.borrows.Extend(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, 1, b.ExtensionCount)
    b, err = f.borrows.Extend(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, 2, b.ExtensionCount)
    assert.Equal(t, date(2025, 4, 7), *b.DueDate, "14-day loan plus two 7-day extensions")

    _, err = f.borrows.Extend(ctx, 1, 10)
    assert.ErrorIs(t, err, ErrMaxExtensionsReached)
}

func TestSweepThenExtendRefused(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    pastDue := date(2025, 3, 1)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive, DueDate: &pastDue})
    ctx := context.Background()

    sw := newTestSweeper(f.state)
    res, err := sw.Run(ctx)
    require.NoError(t, err)
    assert.Equal(t, int64(1), res.OverdueMarked)

    _, err = f.borrows.Extend(ctx, 1, 10)
    assert.ErrorIs(t, err, ErrNotExtendable)

    // The user can still return the overdue copy.
    b, err := f.borrows.Return(ctx, 1, 10)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowReturned, b.Status)
    assert.Equal(t, 1, f.state.books[10].AvailableCopies)
}

func TestOverdueBlocksNewBorrows(t *testing.T) {
    f := defaultFixture()
    f.state.addUser(1)
    f.state.addBook(10, 1, 0)
    f.state.addBook(11, 1, 1)
    pastDue := date(2025, 3, 1)
    f.state.addBorrow(model.Borrow{UserID: 1, BookID: 10, Status: model.BorrowActive, DueDate: &pastDue})
    ctx := context.Background()

    // Before the sweep runs the overdue check does not fire yet.
    _, err := newTestSweeper(f.state).Run(ctx)
    require.NoError(t, err)

    _, err = f.borrows.Create(ctx, 1, 11)
    assert.ErrorIs(t, err, ErrHasOverdueBooks)

    _, err = f.borrows.Return(ctx, 1, 10)
    require.NoError(t, err)

    b, err := f.borrows.Create(ctx, 1, 11)
    require.NoError(t, err)
    assert.Equal(t, model.BorrowRequested, b.Status)
}
