package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator verifies who a caller is. The service layer only depends on this
// interface, so another credential scheme can replace passwords without touching it.
type Authenticator interface {
	// Register creates an account. The credential format depends on the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user whose credential matches, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks a credential before it is stored.
	ValidateCredential(credential string) error
}
