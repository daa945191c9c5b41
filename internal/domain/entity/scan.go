package entity

import "time"

// Acciones de inventario que acepta POST /inventory/scan.
const (
	ActionSale    = "sale"
	ActionRestock = "restock"
)

// Estados de un intento de escaneo.
const (
	ScanSuccess = "success"
	ScanError   = "error"
)

// ScanEvent resultado de un intento de escaneo. Se muestra como "último escaneo"
// y se guarda en el historial local que alimenta los escaneos recientes del dashboard.
type ScanEvent struct {
	Barcode      string    `json:"barcode"`
	ProductLabel string    `json:"product_label,omitempty"` // vacío cuando Status == error
	Action       string    `json:"action"`
	Quantity     int       `json:"quantity"`
	Status       string    `json:"status"` // success | error
	Timestamp    time.Time `json:"timestamp"`
}
