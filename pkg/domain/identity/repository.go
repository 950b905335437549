package identity

import (
	"context"
)

//go:generate mockery --name=Repository --dir=. --output=../../mocks --filename=identity_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Deactivate(ctx context.Context, id string) error
	VerifyCredential(ctx context.Context, id string, secret string) (bool, error)
}
