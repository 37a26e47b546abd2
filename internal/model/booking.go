package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  Only
// PENDING bookings take part in fulfillment; the other three states
// are terminal.
type BookingStatus string

const (
    BookingPending   BookingStatus = "PENDING"
    BookingFulfilled BookingStatus = "FULFILLED"
    BookingCancelled BookingStatus = "CANCELLED"
    BookingExpired   BookingStatus = "EXPIRED"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
    switch s {
    case BookingPending, BookingFulfilled, BookingCancelled, BookingExpired:
        return true
    }
    return false
}

// Booking is a queued reservation for a book that currently has no
// available copies.  Bookings are fulfilled FIFO by booking date when
// a copy is freed, and expire once the expected available date has
// passed without fulfillment.
//
// Fields:
//  ID                    – primary key identifier.
//  UserID                – user waiting for the book.
//  BookID                – book being waited on.
//  Status                – current lifecycle state.
//  BookingDate           – date the booking was placed.
//  ExpectedAvailableDate – heuristic estimate of availability; also
//                          the expiry boundary for PENDING bookings.
type Booking struct {
    ID                    uint64        `json:"id"`
    UserID                uint64        `json:"user_id"`
    BookID                uint64        `json:"book_id"`
    Status                BookingStatus `json:"status"`
    BookingDate           time.Time     `json:"booking_date"`
    ExpectedAvailableDate time.Time     `json:"expected_available_date"`
    CreatedAt             time.Time     `json:"created_at"`
    UpdatedAt             time.Time     `json:"updated_at"`
}
