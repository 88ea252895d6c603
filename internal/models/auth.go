package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user. The role is part
// of the credential tuple: the same username can only log in under the role
// it was created with.
type LoginRequest struct {
	Username string   `json:"username" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Role     UserRole `json:"role" validate:"required"`
}

// LoginResponse returns the issued token and the user record.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ChangePasswordRequest updates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// JWTClaims is the access-token payload: identity, role, and department are
// everything the role guards and ownership checks need.
type JWTClaims struct {
	UserID     string   `json:"id"`
	Role       UserRole `json:"role"`
	Department string   `json:"department"`
	Name       string   `json:"name"`
	jwt.RegisteredClaims
}
