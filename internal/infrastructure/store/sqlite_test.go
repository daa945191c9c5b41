package store_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/store"
)

func openStore(t *testing.T) (*store.SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "syncvault.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

// ──────────────────────────────────────────────────────────────────────────────
// Token y perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_TokenRoundtrip(t *testing.T) {
	st, _ := openStore(t)

	_, ok := st.Token()
	assert.False(t, ok, "base recién creada, sin token")

	require.NoError(t, st.SetToken("tok-abc"))
	tok, ok := st.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-abc", tok)

	require.NoError(t, st.SetToken("tok-nuevo"))
	tok, _ = st.Token()
	assert.Equal(t, "tok-nuevo", tok, "SetToken sobrescribe el valor anterior")

	require.NoError(t, st.ClearToken())
	_, ok = st.Token()
	assert.False(t, ok)
}

func TestStore_PerfilRoundtrip(t *testing.T) {
	st, _ := openStore(t)

	_, ok := st.User()
	assert.False(t, ok)

	u := &entity.User{ID: 7, Phone: "5551234", StoreName: "Tienda Sol"}
	require.NoError(t, st.SetUser(u))

	got, ok := st.User()
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Tienda Sol", got.StoreName)

	require.NoError(t, st.ClearUser())
	_, ok = st.User()
	assert.False(t, ok)
}

func TestStore_PerfilCorruptoDevuelveFalse(t *testing.T) {
	st, path := openStore(t)
	require.NoError(t, st.SetToken("tok")) // crea el esquema y al menos una fila

	// Corromper el perfil directamente en la base, como haría una versión
	// anterior del cliente con otro formato de serialización.
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`INSERT INTO session (key, value) VALUES ('user_profile', 'no-es-json')
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	require.NoError(t, err)

	_, ok := st.User()
	assert.False(t, ok, "un perfil no parseable se trata como ausente")
}

func TestStore_PersisteEntreAperturas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncvault.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.SetToken("tok-persistente"))
	require.NoError(t, st.Close())

	st2, err := store.Open(path)
	require.NoError(t, err)
	defer st2.Close()

	tok, ok := st2.Token()
	require.True(t, ok, "el token sobrevive al cierre del proceso")
	assert.Equal(t, "tok-persistente", tok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial de escaneos
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_HistorialOrdenYLimite(t *testing.T) {
	st, _ := openStore(t)
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		require.NoError(t, st.AddScan(entity.ScanEvent{
			Barcode:      "750100123" + string(rune('0'+i)),
			ProductLabel: "Producto",
			Action:       entity.ActionSale,
			Quantity:     1,
			Status:       entity.ScanSuccess,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	scans, err := st.RecentScans(5)
	require.NoError(t, err)
	require.Len(t, scans, 5, "el límite acota el resultado")
	assert.Equal(t, "7501001236", scans[0].Barcode, "el escaneo más reciente va primero")
	assert.True(t, scans[0].Timestamp.After(scans[4].Timestamp))
}

func TestStore_HistorialOrdenaFraccionesDeSegundo(t *testing.T) {
	st, _ := openStore(t)
	entero := time.Date(2026, 8, 30, 10, 0, 5, 0, time.UTC)
	fraccion := entero.Add(500 * time.Millisecond)

	require.NoError(t, st.AddScan(entity.ScanEvent{
		Barcode: "ENTERO", Action: entity.ActionSale, Quantity: 1,
		Status: entity.ScanSuccess, Timestamp: entero,
	}))
	require.NoError(t, st.AddScan(entity.ScanEvent{
		Barcode: "FRACCION", Action: entity.ActionSale, Quantity: 1,
		Status: entity.ScanSuccess, Timestamp: fraccion,
	}))

	scans, err := st.RecentScans(2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, "FRACCION", scans[0].Barcode,
		"dentro del mismo segundo, la marca con fracción más nueva va primero")
	assert.True(t, scans[0].Timestamp.After(scans[1].Timestamp))
}

func TestStore_HistorialMismoInstanteDesempataPorID(t *testing.T) {
	st, _ := openStore(t)
	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for _, bc := range []string{"A", "B", "C"} {
		require.NoError(t, st.AddScan(entity.ScanEvent{
			Barcode: bc, Action: entity.ActionRestock, Quantity: 2,
			Status: entity.ScanSuccess, Timestamp: at,
		}))
	}

	scans, err := st.RecentScans(10)
	require.NoError(t, err)
	require.Len(t, scans, 3)
	assert.Equal(t, "C", scans[0].Barcode, "a igual instante gana la inserción más nueva")
}

func TestStore_HistorialVacio(t *testing.T) {
	st, _ := openStore(t)

	scans, err := st.RecentScans(5)
	require.NoError(t, err)
	assert.Empty(t, scans)
}
