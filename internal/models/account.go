package models

import (
	"database/sql"
	"time"
)

// Account roles in the marketplace.
const (
	AccountClient   = "CLT"
	AccountProvider = "PRV"
	AccountCourier  = "CUR"
	AccountForeman  = "FRM"
)

// Account is a marketplace participant profile.
type Account struct {
	ID        string         `db:"id" json:"id"`
	FullName  sql.NullString `db:"full_name" json:"-"`
	Type      string         `db:"type" json:"type"`
	City      sql.NullString `db:"city" json:"-"`
	AvatarURL sql.NullString `db:"avatar_url" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// AccountSummary is the API-facing view embedded in message payloads.
type AccountSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Type     string `json:"type"`
	City     string `json:"city,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Summary flattens nullable columns into the wire view.
func (a Account) Summary() AccountSummary {
	return AccountSummary{
		ID:       a.ID,
		FullName: a.FullName.String,
		Type:     a.Type,
		City:     a.City.String,
		Avatar:   a.AvatarURL.String,
	}
}
