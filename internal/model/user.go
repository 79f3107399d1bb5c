package model

import "time"

// Role names carried in the "role" claim of a login token and stored in
// the users.role column.
const (
    RoleAdmin   = "ADMIN"
    RoleStudent = "STUDENT"
)

// ValidRole reports whether r is one of the roles the API understands.
func ValidRole(r string) bool {
    return r == RoleAdmin || r == RoleStudent
}

// User represents an account record as stored in the `users` table.
// The json tags are omitted because handlers define their own response
// shapes and the password hash must never be serialized.
//
// Fields:
//  ID           – primary key (UUID string).
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  Role         – ADMIN or STUDENT.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Identity is the verified claim set extracted from a login token. It is
// built once by the authentication middleware and never re-derived from
// storage for the rest of the request.
type Identity struct {
    ID    string `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
