package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var DefaultCommissionRate = decimal.RequireFromString("40.00")

type POSLocation struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	OwnerID        string          `json:"owner_id"`
	IsActive       bool            `json:"is_active"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
