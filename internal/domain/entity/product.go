package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product ítem de inventario tal como lo entrega el servicio remoto. El cliente
// nunca lo muta directamente; los cambios llegan por refetch tras un scan o upload.
type Product struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	Barcode      string          `json:"barcode"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ReorderPoint int             `json:"reorder_point"`
	Unit         string          `json:"unit,omitempty"`
	Status       string          `json:"status,omitempty"` // healthy, low, critical (lo calcula el servidor)
	LastUpdated  time.Time       `json:"last_updated,omitempty"`
}

// Value valor de inventario del producto: price × quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
