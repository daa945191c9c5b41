package dto

import "github.com/shopspring/decimal"

// ProductCreateRequest cuerpo de POST /products/.
type ProductCreateRequest struct {
	Barcode         string          `json:"barcode"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category,omitempty"`
	ReorderPoint    int             `json:"reorder_point,omitempty"`
	InitialQuantity int             `json:"initial_quantity,omitempty"`
}

// ProductResponse respuesta de los endpoints /products.
type ProductResponse struct {
	ID              int64           `json:"id"`
	Barcode         string          `json:"barcode"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category,omitempty"`
	ReorderPoint    int             `json:"reorder_point"`
	CurrentQuantity int             `json:"current_quantity"`
}

// ProductListResponse respuesta de GET /products/ (paginado con skip/limit).
type ProductListResponse struct {
	Total    int               `json:"total"`
	Products []ProductResponse `json:"products"`
}

// BulkUploadResponse respuesta de POST /products/bulk-upload. El servidor valida
// el CSV; el cliente solo transmite el archivo y reporta este resumen.
type BulkUploadResponse struct {
	Success bool     `json:"success"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
