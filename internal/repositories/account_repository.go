package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"market-chat-service/internal/models"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository is the narrow account-store collaborator the chat
// engine consumes: lookup by id and existence checks only.
type AccountRepository interface {
	Get(ctx context.Context, accountID string) (models.Account, error)
	Exists(ctx context.Context, accountID string) (bool, error)
}

// AccountRepo is a sqlx implementation of AccountRepository.
type AccountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo constructs an AccountRepo.
func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Get fetches an account by id.
func (r *AccountRepo) Get(ctx context.Context, accountID string) (models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account,
		`SELECT id, full_name, type, city, avatar_url, created_at FROM accounts WHERE id=$1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	return account, err
}

// Exists checks account presence without loading the row.
func (r *AccountRepo) Exists(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE id=$1)`, accountID)
	return exists, err
}
