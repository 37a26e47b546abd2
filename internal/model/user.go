package model

import "time"

// User mirrors the subset of the user directory consulted by the
// borrowing core: identity and the active flag.  Credentials and
// profile data live outside this service.
type User struct {
    ID        uint64    `json:"id"`
    Email     string    `json:"email"`
    FullName  string    `json:"full_name"`
    IsActive  bool      `json:"is_active"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
