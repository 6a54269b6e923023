package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository defines the persistence operations for user records.
// Implementations return ErrNotFound for missing ids and ErrDuplicateEmail
// when the unique email constraint rejects a write.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
	MergeOnboarding(ctx context.Context, id string, answers entity.OnboardingAnswers) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	SetAvatar(ctx context.Context, id, url string) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}
