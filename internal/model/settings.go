package model

import "time"

// Default policy values used when no settings row exists yet.
const (
    DefaultBorrowDayLimit    = 14
    DefaultBorrowExtendLimit = 2
    DefaultBorrowBookLimit   = 5
    DefaultBookingDaysLimit  = 7
)

// PolicySettings is the singleton of numeric limits consulted on every
// borrowing decision.  Admin operations mutate one field at a time;
// the core only reads.
//
// Fields:
//  BorrowDayLimit    – loan period in days applied when a borrow activates.
//  BorrowExtendLimit – maximum number of extensions per borrow.
//  BorrowBookLimit   – maximum concurrent non-terminal borrows per user.
//  BookingDaysLimit  – maximum booking horizon in days.
type PolicySettings struct {
    ID                uint64    `json:"-"`
    BorrowDayLimit    int       `json:"borrow_day_limit"`
    BorrowExtendLimit int       `json:"borrow_extend_limit"`
    BorrowBookLimit   int       `json:"borrow_book_limit"`
    BookingDaysLimit  int       `json:"booking_days_limit"`
    UpdatedAt         time.Time `json:"-"`
}

// DefaultPolicySettings returns the policy values used before any
// admin edit has been recorded.
func DefaultPolicySettings() PolicySettings {
    return PolicySettings{
        BorrowDayLimit:    DefaultBorrowDayLimit,
        BorrowExtendLimit: DefaultBorrowExtendLimit,
        BorrowBookLimit:   DefaultBorrowBookLimit,
        BookingDaysLimit:  DefaultBookingDaysLimit,
    }
}
