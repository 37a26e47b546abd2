package model

import "time"

// Book carries the slice of a catalog entry the borrowing core cares
// about: the copy counts.  TotalCopies changes only through explicit
// admin edits; AvailableCopies is mutated exclusively by the inventory
// ledger and always stays within [0, TotalCopies].
type Book struct {
    ID              uint64    `json:"id"`
    Title           string    `json:"title"`
    ISBN            string    `json:"isbn"`
    TotalCopies     int       `json:"total_copies"`
    AvailableCopies int       `json:"available_copies"`
    CreatedAt       time.Time `json:"created_at"`
    UpdatedAt       time.Time `json:"updated_at"`
}
