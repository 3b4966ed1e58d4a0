package auth

import "wealthdesk-backend/internal/pkg/apperrors"

var (
	ErrCredentialsRequired = apperrors.Validation("Username and password are required")
	ErrInvalidCredentials  = apperrors.Unauthenticated("Invalid username or password")
	ErrMissingToken        = apperrors.Unauthenticated("Authentication token is required")
	ErrInvalidToken        = apperrors.Unauthenticated("Invalid or expired token")
	ErrRevokedToken        = apperrors.Unauthenticated("Token has been revoked")
	ErrInvalidResetToken   = apperrors.Validation("Reset link is invalid or has expired")
	ErrInvalidPassword     = apperrors.Validation("Password must be at least 8 characters and include a letter, a number and a special character")
	ErrAccountExists       = apperrors.Conflict("An account with this email already exists")
)
