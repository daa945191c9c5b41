// Package store implementa el almacenamiento local del cliente sobre SQLite:
// token de acceso, perfil cacheado de la tienda y el historial de escaneos que
// alimenta los "escaneos recientes" del dashboard. Es el análogo del
// localStorage de un cliente web, con persistencia por archivo.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // driver SQLite puro Go, sin CGO

	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
)

// Claves de la tabla session.
const (
	keyAuthToken   = "auth_token"
	keyUserProfile = "user_profile"
)

// SQLiteStore almacenamiento local del cliente. Seguro para uso concurrente.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open abre (o crea) la base local en path y prepara el esquema.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: crear directorio: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: abrir SQLite: %w", err)
	}

	// SQLite admite un solo escritor
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: crear tablas: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS session (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS scan_history (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		barcode       TEXT NOT NULL,
		product_label TEXT NOT NULL DEFAULT '',
		action        TEXT NOT NULL,
		quantity      INTEGER NOT NULL,
		status        TEXT NOT NULL,
		scanned_at    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scan_history_at ON scan_history(scanned_at);
	`
	_, err := db.Exec(query)
	return err
}

// Close cierra la base local.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ── Token ─────────────────────────────────────────────────────────────────────

// Token devuelve el token persistido, si existe.
func (s *SQLiteStore) Token() (string, bool) {
	v, ok := s.get(keyAuthToken)
	return v, ok
}

// SetToken persiste el token de acceso.
func (s *SQLiteStore) SetToken(token string) error {
	return s.set(keyAuthToken, token)
}

// ClearToken elimina el token persistido.
func (s *SQLiteStore) ClearToken() error {
	return s.del(keyAuthToken)
}

// ── Perfil cacheado ───────────────────────────────────────────────────────────

// User devuelve el perfil cacheado. false si no existe o no se puede parsear.
func (s *SQLiteStore) User() (*entity.User, bool) {
	raw, ok := s.get(keyUserProfile)
	if !ok {
		return nil, false
	}
	var u entity.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

// SetUser persiste el perfil serializado como JSON.
func (s *SQLiteStore) SetUser(u *entity.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("store: serializar perfil: %w", err)
	}
	return s.set(keyUserProfile, string(raw))
}

// ClearUser elimina el perfil cacheado.
func (s *SQLiteStore) ClearUser() error {
	return s.del(keyUserProfile)
}

// ── Historial de escaneos ─────────────────────────────────────────────────────

// AddScan agrega un evento al historial local.
func (s *SQLiteStore) AddScan(ev entity.ScanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// scanned_at en nanosegundos unix: el ORDER BY entero es cronológico
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO scan_history (barcode, product_label, action, quantity, status, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Barcode, ev.ProductLabel, ev.Action, ev.Quantity, ev.Status, ev.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: insertar escaneo: %w", err)
	}
	return nil
}

// RecentScans devuelve los últimos escaneos, el más reciente primero.
func (s *SQLiteStore) RecentScans(limit int) ([]entity.ScanEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(context.Background(), `
		SELECT barcode, product_label, action, quantity, status, scanned_at
		FROM scan_history ORDER BY scanned_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: leer historial: %w", err)
	}
	defer rows.Close()

	var out []entity.ScanEvent
	for rows.Next() {
		var ev entity.ScanEvent
		var at int64
		if err := rows.Scan(&ev.Barcode, &ev.ProductLabel, &ev.Action, &ev.Quantity, &ev.Status, &at); err != nil {
			return nil, fmt.Errorf("store: escanear fila: %w", err)
		}
		ev.Timestamp = time.Unix(0, at)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ── Núcleo clave/valor ────────────────────────────────────────────────────────

func (s *SQLiteStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v string
	if err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&v); err != nil {
		return "", false
	}
	return v, true
}

func (s *SQLiteStore) set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("store: guardar %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) del(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: eliminar %s: %w", key, err)
	}
	return nil
}
