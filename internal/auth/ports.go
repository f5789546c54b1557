package auth

import "context"

// UserRepository persists accounts. Implementations map unique-constraint
// violations to the ErrUsernameExists, ErrEmailExists and ErrPhoneExists
// sentinels.
type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
