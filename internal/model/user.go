package model

import "time"

// Application roles stored in the JWT "role" claim.  Admins manage the
// full catalogue; colaboradores can register invitados and validate
// tickets at the door.
const (
	RoleAdmin       = "admin"
	RoleColaborador = "colaborador"
)

// User represents an application user as stored in the `users` table.
// Handlers define separate response types with JSON tags; this struct
// is used by the repository layer only.
//
// Fields:
//  ID            – primary key identifier.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hashed password.
//  FullName      – optional display name.
//  Role          – role name (admin or colaborador).
//  ColaboradorID – colaborador row linked to this account (nullable,
//                  used to default-attribute invitados).
//  IsActive      – whether the account is active.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	FullName      *string   // users.full_name (nullable)
	Role          string    // users.role
	ColaboradorID *string   // users.colaborador_id (nullable)
	IsActive      bool      // users.is_active
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only a
// SHA-256 hash of the raw token is stored.
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
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
