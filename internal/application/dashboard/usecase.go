// Package dashboard recalcula las métricas del tablero a partir de la colección
// de productos vigente. Sin parcheo incremental: cada señal de actualización
// provoca un refetch completo y un recálculo puro.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

const recentScansShown = 5 // escaneos recientes mostrados en el tablero

// InventoryAPI consulta de inventario del servicio remoto.
type InventoryAPI interface {
	Inventory(ctx context.Context) ([]entity.Product, error)
}

// ScanHistory historial local de escaneos.
type ScanHistory interface {
	RecentScans(limit int) ([]entity.ScanEvent, error)
}

// Stats métricas derivadas del tablero. Nadie más las muta: se recalculan
// completas en cada fetch.
type Stats struct {
	TotalProducts int
	TotalValue    decimal.Decimal
	LowStockCount int
	RecentScans   []entity.ScanEvent
}

// Snapshot resultado de un fetch: métricas más la colección que las produjo.
type Snapshot struct {
	Stats     Stats
	Products  []entity.Product
	FetchedAt time.Time
}

// UseCase caso de uso del tablero.
type UseCase struct {
	api     InventoryAPI
	history ScanHistory
	log     *logger.Logger
}

// New construye el caso de uso. history puede ser nil (sin escaneos recientes).
func New(api InventoryAPI, history ScanHistory, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{api: api, history: history, log: log.Component("dashboard")}
}

// Compute recálculo puro de las métricas sobre exactamente la colección dada:
// total_value = Σ price×quantity; low_stock = quantity < reorder_point×1.5.
// Idéntico resultado ante idéntica entrada.
func Compute(products []entity.Product) Stats {
	total := decimal.Zero
	lowStock := 0
	for _, p := range products {
		total = total.Add(p.Value())
		if domain.IsLowStock(p.Quantity, p.ReorderPoint) {
			lowStock++
		}
	}
	return Stats{
		TotalProducts: len(products),
		TotalValue:    total,
		LowStockCount: lowStock,
	}
}

// Fetch refetch completo + recálculo. Los escaneos recientes salen del historial
// local; un fallo leyéndolos no tumba el tablero.
func (uc *UseCase) Fetch(ctx context.Context) (*Snapshot, error) {
	products, err := uc.api.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: consultar inventario: %w", err)
	}

	stats := Compute(products)
	if uc.history != nil {
		scans, err := uc.history.RecentScans(recentScansShown)
		if err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo leer el historial de escaneos")
		} else {
			stats.RecentScans = scans
		}
	}

	return &Snapshot{Stats: stats, Products: products, FetchedAt: time.Now()}, nil
}

// Watch refetchea en cada señal recibida y entrega el snapshot por fn. Un fetch
// fallido se registra y se espera la próxima señal; termina cuando signals se
// cierra o ctx se cancela. Una señal realtime y un refetch manual pueden
// competir: gana el último, no hay token de frescura.
func (uc *UseCase) Watch(ctx context.Context, signals <-chan struct{}, fn func(*Snapshot)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			snap, err := uc.Fetch(ctx)
			if err != nil {
				uc.log.Warn().Err(err).Msg("refetch del tablero fallido")
				continue
			}
			fn(snap)
		}
	}
}
