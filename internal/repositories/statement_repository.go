package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"market-chat-service/internal/models"
)

var (
	ErrStatementNotFound = errors.New("statement not found")
	ErrResponseNotFound  = errors.New("response not found")
)

// StatementRepository is the narrow statement-store collaborator used for
// statement-originated messages.
type StatementRepository interface {
	Get(ctx context.Context, statementID string) (models.Statement, error)
}

// ResponseRepository exposes bid lookups for conversations started from a response.
type ResponseRepository interface {
	Get(ctx context.Context, responseID string) (models.Response, error)
	ListForStatement(ctx context.Context, statementID string) ([]models.Response, error)
}

// StatementRepo is a sqlx implementation of StatementRepository.
type StatementRepo struct {
	db *sqlx.DB
}

// NewStatementRepo constructs a StatementRepo.
func NewStatementRepo(db *sqlx.DB) *StatementRepo {
	return &StatementRepo{db: db}
}

// Get fetches a statement by id.
func (r *StatementRepo) Get(ctx context.Context, statementID string) (models.Statement, error) {
	var st models.Statement
	err := r.db.GetContext(ctx, &st,
		`SELECT id, account_id, type, work_detail, from_address, to_address,
                budget_from, budget_to, is_active, is_completed, created_at
         FROM statements WHERE id=$1`, statementID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Statement{}, ErrStatementNotFound
	}
	return st, err
}

// ResponseRepo is a sqlx implementation of ResponseRepository.
type ResponseRepo struct {
	db *sqlx.DB
}

// NewResponseRepo constructs a ResponseRepo.
func NewResponseRepo(db *sqlx.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Get fetches a response by id.
func (r *ResponseRepo) Get(ctx context.Context, responseID string) (models.Response, error) {
	var resp models.Response
	err := r.db.GetContext(ctx, &resp,
		`SELECT id, account_id, statement_id, price, is_viewed, created_at FROM responses WHERE id=$1`,
		responseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Response{}, ErrResponseNotFound
	}
	return resp, err
}

// ListForStatement returns bids left on a statement, newest first.
func (r *ResponseRepo) ListForStatement(ctx context.Context, statementID string) ([]models.Response, error) {
	var resps []models.Response
	err := r.db.SelectContext(ctx, &resps,
		`SELECT id, account_id, statement_id, price, is_viewed, created_at
         FROM responses WHERE statement_id=$1 ORDER BY created_at DESC`, statementID)
	return resps, err
}
