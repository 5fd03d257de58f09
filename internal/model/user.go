package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column. The json tags
// are omitted because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags so the password hash can never leak into a
// response by accident.
//
// Fields:
//  ID           – UUID primary key of the user.
//  Email        – unique email address, stored as given at registration.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name, may be empty.
//  Username     – public handle; defaults to the email at registration.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Name         string    // users.name
	Username     string    // users.username
	CreatedAt    time.Time // users.created_at
}

// Principal is the resolved identity of the caller of one request.
// It is rebuilt from the users table on every authenticated request
// and is never persisted; a request either carries a fully populated
// Principal or none at all.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries expiry and revocation
// metadata. The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
