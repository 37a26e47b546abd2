package model

import "time"

// BorrowStatus enumerates the lifecycle states of a borrow record.
// REQUESTED, ACCEPTED, ACTIVE and OVERDUE are non-terminal: the user
// still holds a claim on a copy.  RETURNED and REJECTED are terminal.
type BorrowStatus string

const (
    BorrowRequested BorrowStatus = "REQUESTED"
    BorrowAccepted  BorrowStatus = "ACCEPTED"
    BorrowActive    BorrowStatus = "ACTIVE"
    BorrowOverdue   BorrowStatus = "OVERDUE"
    BorrowReturned  BorrowStatus = "RETURNED"
    BorrowRejected  BorrowStatus = "REJECTED"
)

// Terminal reports whether the status releases the (user, book) pair
// for a new borrow.  A copy reserved under a non-terminal borrow is
// still accounted against the book's available count.
func (s BorrowStatus) Terminal() bool {
    return s == BorrowReturned || s == BorrowRejected
}

// Valid reports whether s is one of the known borrow statuses.
func (s BorrowStatus) Valid() bool {
    switch s {
    case BorrowRequested, BorrowAccepted, BorrowActive, BorrowOverdue, BorrowReturned, BorrowRejected:
        return true
    }
    return false
}

// Borrow records one user's claim on one copy of a book.  At most one
// non-terminal borrow may exist per (user, book) pair at a time; the
// repository enforces this at creation.  All date fields are dates at
// UTC midnight.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user holding (or requesting) the copy.
//  BookID         – book the copy belongs to.
//  Status         – current lifecycle state.
//  BorrowDate     – set when the borrow becomes ACTIVE.
//  DueDate        – set when the borrow becomes ACTIVE; moved by extensions.
//  ReturnDate     – set exactly once, on return (nullable).
//  ExtensionCount – number of 7-day extensions applied so far.
type Borrow struct {
    ID             uint64       `json:"id"`
    UserID         uint64       `json:"user_id"`
    BookID         uint64       `json:"book_id"`
    Status         BorrowStatus `json:"status"`
    BorrowDate     *time.Time   `json:"borrow_date,omitempty"`
    DueDate        *time.Time   `json:"due_date,omitempty"`
    ReturnDate     *time.Time   `json:"return_date,omitempty"`
    ExtensionCount int          `json:"extension_count"`
    CreatedAt      time.Time    `json:"created_at"`
    UpdatedAt      time.Time    `json:"updated_at"`
}

// ExtensionDays is the fixed number of days a single extension adds
// to the due date.
const ExtensionDays = 7

// DateOnly truncates t to a date at UTC midnight.  All due-date and
// expiry comparisons operate on dates, never on clock times.
func DateOnly(t time.Time) time.Time {
    t = t.UTC()
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DueBefore reports whether the borrow's due date has passed relative
// to today.  A borrow with no due date set is never due.
func (b *Borrow) DueBefore(today time.Time) bool {
    if b.DueDate == nil {
        return false
    }
    return b.DueDate.Before(DateOnly(today))
}

// BorrowStats aggregates record counts per status for reporting.
type BorrowStats struct {
    Total     int64 `json:"total"`
    Requested int64 `json:"requested"`
    Active    int64 `json:"active"`
    Overdue   int64 `json:"overdue"`
    Returned  int64 `json:"returned"`
    Rejected  int64 `json:"rejected"`
}
