// Package repository defines the storage interfaces the service layer
// programs against. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/talenthub/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the record store for accounts.
//
// Every operation is a single-record atomic read or write; no multi-record
// transactions are needed by this system. Create returns apperror.ErrConflict
// (wrapped) when the email is already taken, and the Get/Delete operations
// return apperror.ErrNotFound (wrapped) for unknown records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Count(ctx context.Context) (int, error)
	CountResumeUploaded(ctx context.Context) (int, error)
}
