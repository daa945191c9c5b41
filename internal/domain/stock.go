package domain

// StockStatus clasificación del nivel de inventario de un producto.
type StockStatus string

const (
	StockCritical StockStatus = "critical" // quantity < reorder_point
	StockLow      StockStatus = "low"      // quantity < reorder_point * 1.5
	StockGood     StockStatus = "good"
)

// ClassifyStock determina el estado de stock según cantidad y punto de reorden.
// El umbral bajo es reorder_point*1.5; se compara en enteros (2q < 3rp) para que
// el límite sea exacto sin aritmética flotante.
func ClassifyStock(quantity, reorderPoint int) StockStatus {
	switch {
	case quantity < reorderPoint:
		return StockCritical
	case 2*quantity < 3*reorderPoint:
		return StockLow
	default:
		return StockGood
	}
}

// IsLowStock indica si el producto cuenta para el contador de stock bajo del
// dashboard: quantity < reorder_point*1.5 (incluye los críticos).
func IsLowStock(quantity, reorderPoint int) bool {
	return 2*quantity < 3*reorderPoint
}
