// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published by the borrowing core.
const (
    EventBorrowRequested = "borrow.requested"
    EventBorrowStatus    = "borrow.status"
    EventBookingCreated  = "booking.created"
    EventBookingReady    = "booking.ready"
)

// NotificationQueueName is the broker queue notifications are
// published to and consumed from.
const NotificationQueueName = "library.notifications"

// NotificationEvent is the fire-and-forget payload delivered to the
// notification sink whenever a borrow or booking changes state. It
// carries enough information for downstream consumers to log or
// notify without querying the primary database.
type NotificationEvent struct {
    Type        string `json:"type"`
    RecipientID uint64 `json:"recipient_id"`
    BookID      uint64 `json:"book_id"`
    BorrowID    uint64 `json:"borrow_id,omitempty"`
    BookingID   uint64 `json:"booking_id,omitempty"`
    Status      string `json:"status,omitempty"`
    Message     string `json:"message"`
    OccurredAt  string `json:"occurred_at"`
}
