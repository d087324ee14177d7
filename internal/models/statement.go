package models

import (
	"database/sql"
	"time"
)

// Statement types mirror the account roles a request is addressed to.
const (
	StatementForeman  = "FRM"
	StatementCourier  = "CUR"
	StatementMaterial = "MTL"
)

// Statement is a service request published by a client.
type Statement struct {
	ID          string         `db:"id" json:"id"`
	AccountID   string         `db:"account_id" json:"account_id"`
	Type        string         `db:"type" json:"type"`
	WorkDetail  sql.NullString `db:"work_detail" json:"-"`
	FromAddress sql.NullString `db:"from_address" json:"-"`
	ToAddress   sql.NullString `db:"to_address" json:"-"`
	BudgetFrom  sql.NullInt64  `db:"budget_from" json:"-"`
	BudgetTo    sql.NullInt64  `db:"budget_to" json:"-"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	IsCompleted bool           `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// StatementSummary is the compact view linked from chat messages.
type StatementSummary struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	WorkDetail  string `json:"work_detail,omitempty"`
	FromAddress string `json:"from_address,omitempty"`
	ToAddress   string `json:"to_address,omitempty"`
	BudgetFrom  int64  `json:"budget_from,omitempty"`
	BudgetTo    int64  `json:"budget_to,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsCompleted bool   `json:"is_completed"`
}

// Summary flattens nullable columns into the wire view.
func (s Statement) Summary() StatementSummary {
	return StatementSummary{
		ID:          s.ID,
		AccountID:   s.AccountID,
		Type:        s.Type,
		WorkDetail:  s.WorkDetail.String,
		FromAddress: s.FromAddress.String,
		ToAddress:   s.ToAddress.String,
		BudgetFrom:  s.BudgetFrom.Int64,
		BudgetTo:    s.BudgetTo.Int64,
		IsActive:    s.IsActive,
		IsCompleted: s.IsCompleted,
	}
}

// Response is a bid left by a worker account on a statement.
type Response struct {
	ID          string        `db:"id" json:"id"`
	AccountID   string        `db:"account_id" json:"account_id"`
	StatementID string        `db:"statement_id" json:"statement_id"`
	Price       sql.NullInt64 `db:"price" json:"-"`
	IsViewed    bool          `db:"is_viewed" json:"is_viewed"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// ResponseSummary is the API view of a bid.
type ResponseSummary struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	StatementID string `json:"statement_id"`
	Price       int64  `json:"price,omitempty"`
	IsViewed    bool   `json:"is_viewed"`
}

// Summary flattens nullable columns into the wire view.
func (r Response) Summary() ResponseSummary {
	return ResponseSummary{
		ID:          r.ID,
		AccountID:   r.AccountID,
		StatementID: r.StatementID,
		Price:       r.Price.Int64,
		IsViewed:    r.IsViewed,
	}
}
