package dto

import "github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"

// ScanRequest cuerpo de POST /inventory/scan.
type ScanRequest struct {
	Barcode  string `json:"barcode"`
	Action   string `json:"action"` // sale | restock
	Quantity int    `json:"quantity"`
}

// ScanResponse respuesta de POST /inventory/scan.
type ScanResponse struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	ProductName   string          `json:"product_name,omitempty"`
	Product       *entity.Product `json:"product,omitempty"`
	NewQuantity   int             `json:"new_quantity"`
	TransactionID int64           `json:"transaction_id"`
}

// Label nombre a mostrar en el resultado del escaneo.
func (r ScanResponse) Label() string {
	if r.ProductName != "" {
		return r.ProductName
	}
	if r.Product != nil && r.Product.Name != "" {
		return r.Product.Name
	}
	return "Unknown Product"
}

// UpdateQuantityRequest cuerpo de PUT /inventory/{product_id}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantityResponse respuesta de PUT /inventory/{product_id}.
type UpdateQuantityResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
}
