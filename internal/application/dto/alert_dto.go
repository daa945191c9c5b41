package dto

import "time"

// Alert alerta de stock bajo generada por el servidor.
type Alert struct {
	ID             int64     `json:"id"`
	AlertType      string    `json:"alert_type"`
	Message        string    `json:"message"`
	Acknowledged   bool      `json:"acknowledged"`
	CreatedAt      time.Time `json:"created_at"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductBarcode string    `json:"product_barcode"`
}

// AcknowledgeRequest cuerpo de POST /alerts/acknowledge.
type AcknowledgeRequest struct {
	AlertID int64 `json:"alert_id"`
}
