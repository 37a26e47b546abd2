package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestBorrowStatusTerminal(t *testing.T) {
    assert.True(t, BorrowReturned.Terminal())
    assert.True(t, BorrowRejected.Terminal())
    for _, s := range []BorrowStatus{BorrowRequested, BorrowAccepted, BorrowActive, BorrowOverdue} {
        assert.False(t, s.Terminal(), "%s still holds a claim on a copy", s)
    }
}

func TestBorrowStatusValid(t *testing.T) {
    assert.True(t, BorrowActive.Valid())
    assert.False(t, BorrowStatus("LOST").Valid())
    assert.False(t, BorrowStatus("").Valid())
}

func TestBookingStatusValid(t *testing.T) {
    assert.True(t, BookingPending.Valid())
    assert.False(t, BookingStatus("DONE").Valid())
}

func TestDateOnly(t *testing.T) {
    got := DateOnly(time.Date(2025, 3, 10, 23, 59, 59, 123, time.UTC))
    assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)

    // Zone offsets convert to UTC before truncation.
    est := time.FixedZone("EST", -5*3600)
    got = DateOnly(time.Date(2025, 3, 10, 22, 0, 0, 0, est))
    assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), got)
}

func TestDueBefore(t *testing.T) {
    today := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

    b := &Borrow{}
    assert.False(t, b.DueBefore(today), "no due date set means never due")

    yesterday := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
    b.DueDate = &yesterday
    assert.True(t, b.DueBefore(today))

    dueToday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
    b.DueDate = &dueToday
    assert.False(t, b.DueBefore(today), "due today is not overdue yet")
}
