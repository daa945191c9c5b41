package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dashboard"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeInventoryAPI struct {
	products []entity.Product
	err      error
	calls    int
}

func (f *fakeInventoryAPI) Inventory(ctx context.Context) ([]entity.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type fakeScanHistory struct {
	scans []entity.ScanEvent
	err   error
}

func (f *fakeScanHistory) RecentScans(limit int) ([]entity.ScanEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.scans) > limit {
		return f.scans[:limit], nil
	}
	return f.scans, nil
}

func producto(name string, price string, qty, reorder int) entity.Product {
	return entity.Product{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
		ReorderPoint: reorder,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Compute — recálculo puro
// ──────────────────────────────────────────────────────────────────────────────

func TestCompute_ValorTotalExacto(t *testing.T) {
	products := []entity.Product{
		producto("Arroz", "52.50", 40, 20),  // 2100.00
		producto("Aceite", "199.99", 3, 10), // 599.97, crítico
		producto("Sal", "15.00", 25, 20),    // 375.00, bajo (25 < 30)
	}

	stats := dashboard.Compute(products)

	assert.Equal(t, 3, stats.TotalProducts)
	assert.True(t, stats.TotalValue.Equal(decimal.RequireFromString("3074.97")),
		"total_value debe ser la suma exacta precio×cantidad, obtuvo %s", stats.TotalValue)
	assert.Equal(t, 2, stats.LowStockCount, "crítico y bajo cuentan ambos como stock bajo")
}

func TestCompute_Idempotente(t *testing.T) {
	products := []entity.Product{
		producto("Arroz", "52.50", 40, 20),
		producto("Azúcar", "33.33", 7, 5),
	}

	a := dashboard.Compute(products)
	b := dashboard.Compute(products)

	assert.Equal(t, a.TotalProducts, b.TotalProducts)
	assert.True(t, a.TotalValue.Equal(b.TotalValue), "misma colección, mismo total")
	assert.Equal(t, a.LowStockCount, b.LowStockCount)
}

func TestCompute_ColeccionVacia(t *testing.T) {
	stats := dashboard.Compute(nil)

	assert.Equal(t, 0, stats.TotalProducts)
	assert.True(t, stats.TotalValue.IsZero(), "sin productos el valor total es cero")
	assert.Equal(t, 0, stats.LowStockCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fetch — refetch completo + historial local
// ──────────────────────────────────────────────────────────────────────────────

func TestFetch_IncluyeEscaneosRecientes(t *testing.T) {
	api := &fakeInventoryAPI{products: []entity.Product{producto("Arroz", "52.50", 40, 20)}}
	history := &fakeScanHistory{scans: []entity.ScanEvent{
		{Barcode: "750100", ProductLabel: "Arroz", Action: entity.ActionSale, Quantity: 1, Status: entity.ScanSuccess, Timestamp: time.Now()},
	}}
	uc := dashboard.New(api, history, nil)

	snap, err := uc.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, snap.Stats.TotalProducts)
	require.Len(t, snap.Stats.RecentScans, 1)
	assert.Equal(t, "Arroz", snap.Stats.RecentScans[0].ProductLabel)
}

func TestFetch_HistorialFallidoNoTumbaElTablero(t *testing.T) {
	api := &fakeInventoryAPI{products: []entity.Product{producto("Arroz", "52.50", 40, 20)}}
	history := &fakeScanHistory{err: errors.New("base local bloqueada")}
	uc := dashboard.New(api, history, nil)

	snap, err := uc.Fetch(context.Background())

	require.NoError(t, err, "un fallo leyendo historial no debe propagar error")
	assert.Empty(t, snap.Stats.RecentScans)
	assert.Equal(t, 1, snap.Stats.TotalProducts)
}

func TestFetch_ErrorDeInventarioPropaga(t *testing.T) {
	api := &fakeInventoryAPI{err: errors.New("503 service unavailable")}
	uc := dashboard.New(api, nil, nil)

	snap, err := uc.Fetch(context.Background())

	require.Error(t, err)
	assert.Nil(t, snap)
}

// ──────────────────────────────────────────────────────────────────────────────
// Watch — cada señal provoca un refetch completo
// ──────────────────────────────────────────────────────────────────────────────

func TestWatch_RefetchPorSenal(t *testing.T) {
	api := &fakeInventoryAPI{products: []entity.Product{producto("Arroz", "52.50", 40, 20)}}
	uc := dashboard.New(api, nil, nil)

	signals := make(chan struct{}, 2)
	signals <- struct{}{}
	signals <- struct{}{}
	close(signals)

	var snaps []*dashboard.Snapshot
	uc.Watch(context.Background(), signals, func(s *dashboard.Snapshot) {
		snaps = append(snaps, s)
	})

	assert.Equal(t, 2, api.calls, "cada señal debe provocar exactamente un refetch")
	assert.Len(t, snaps, 2)
}

func TestWatch_FetchFallidoEsperaSiguienteSenal(t *testing.T) {
	api := &fakeInventoryAPI{err: errors.New("timeout")}
	uc := dashboard.New(api, nil, nil)

	signals := make(chan struct{}, 1)
	signals <- struct{}{}
	close(signals)

	delivered := 0
	uc.Watch(context.Background(), signals, func(*dashboard.Snapshot) { delivered++ })

	assert.Equal(t, 1, api.calls)
	assert.Equal(t, 0, delivered, "un fetch fallido no entrega snapshot")
}
