package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryEntry struct {
	ID                string          `db:"id" json:"id"`
	StoreID           string          `db:"store_id" json:"store_id"`
	ProductID         string          `db:"product_id" json:"product_id"`
	ExternalProductID string          `db:"external_product_id" json:"external_product_id"`
	Quantity          int             `db:"quantity" json:"quantity"`
	Price             decimal.Decimal `db:"price" json:"price"`
	Available         bool            `db:"available" json:"available"`
	IsLatest          bool            `db:"is_latest" json:"is_latest"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}
