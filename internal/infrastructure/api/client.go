// Package api implementa el cliente HTTP del servicio SyncVault. Es un wrapper
// sin estado: adjunta el bearer token cuando existe, propaga los fallos HTTP como
// *Error con su detail estructurado y nunca reintenta por su cuenta.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

// TokenProvider entrega el token vigente en cada petición. Lo implementa el
// almacenamiento local; ausencia de token => petición sin Authorization.
type TokenProvider interface {
	Token() (string, bool)
}

// Client cliente del servicio remoto SyncVault.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	log        *logger.Logger
}

// New construye el cliente. tokens puede ser nil para llamadas siempre anónimas.
func New(baseURL string, timeout time.Duration, tokens TokenProvider, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log.Component("api"),
	}
}

// ── Autenticación ─────────────────────────────────────────────────────────────

// Login intercambia phone/password por un token de acceso.
func (c *Client) Login(ctx context.Context, phone, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	in := dto.LoginRequest{Phone: phone, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registra una tienda nueva. No autentica.
func (c *Client) Signup(ctx context.Context, in dto.SignupRequest) (*dto.StoreResponse, error) {
	var out dto.StoreResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me devuelve los datos de la tienda autenticada.
func (c *Client) Me(ctx context.Context) (*dto.StoreResponse, error) {
	var out dto.StoreResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword cambia la contraseña de la tienda autenticada.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	in := dto.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/auth/change-password", in, nil)
}

// ── Inventario ────────────────────────────────────────────────────────────────

// Inventory devuelve todos los ítems de inventario de la tienda.
func (c *Client) Inventory(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	if err := c.do(ctx, http.MethodGet, "/inventory", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LowStock devuelve los ítems por debajo de su punto de reorden.
func (c *Client) LowStock(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	if err := c.do(ctx, http.MethodGet, "/inventory/low-stock", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Scan registra una venta o reposición leída por código de barras.
func (c *Client) Scan(ctx context.Context, in dto.ScanRequest) (*dto.ScanResponse, error) {
	var out dto.ScanResponse
	if err := c.do(ctx, http.MethodPost, "/inventory/scan", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuantity fija manualmente la cantidad de un producto.
func (c *Client) UpdateQuantity(ctx context.Context, productID int64, quantity int) (*dto.UpdateQuantityResponse, error) {
	var out dto.UpdateQuantityResponse
	in := dto.UpdateQuantityRequest{Quantity: quantity}
	path := "/inventory/" + strconv.FormatInt(productID, 10)
	if err := c.do(ctx, http.MethodPut, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

// CreateProduct da de alta un producto individual.
func (c *Client) CreateProduct(ctx context.Context, in dto.ProductCreateRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, http.MethodPost, "/products/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts lista productos con paginación skip/limit.
func (c *Client) ListProducts(ctx context.Context, skip, limit int) (*dto.ProductListResponse, error) {
	var out dto.ProductListResponse
	path := fmt.Sprintf("/products/?skip=%d&limit=%d", skip, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct elimina un producto y su inventario.
func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	path := "/products/" + strconv.FormatInt(productID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// BulkUpload sube un CSV de productos como multipart (campo csv_file). El cliente
// solo transmite el archivo; la validación del CSV es del servidor.
func (c *Client) BulkUpload(ctx context.Context, filename string, r io.Reader) (*dto.BulkUploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("csv_file", filename)
	if err != nil {
		return nil, fmt.Errorf("api: crear multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("api: copiar archivo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: cerrar multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/bulk-upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("api: crear request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out dto.BulkUploadResponse
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Alertas ───────────────────────────────────────────────────────────────────

// Alerts lista las alertas de la tienda. acknowledged nil => todas.
func (c *Client) Alerts(ctx context.Context, acknowledged *bool) ([]dto.Alert, error) {
	path := "/alerts/"
	if acknowledged != nil {
		path += "?acknowledged=" + url.QueryEscape(strconv.FormatBool(*acknowledged))
	}
	var out []dto.Alert
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcknowledgeAlert marca una alerta como atendida.
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	in := dto.AcknowledgeRequest{AlertID: alertID}
	return c.do(ctx, http.MethodPost, "/alerts/acknowledge", in, nil)
}

// ── Núcleo HTTP ───────────────────────────────────────────────────────────────

// do serializa body (si lo hay), ejecuta la petición y deserializa en out (si no es nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: crear request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// send aplica las cabeceras comunes, ejecuta y mapea la respuesta.
func (c *Client) send(req *http.Request, out any) error {
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return fmt.Errorf("api: petición cancelada: %w", ctxErr)
		}
		return fmt.Errorf("api: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("api: leer respuesta: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("petición HTTP")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, rawBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("api: deserializar respuesta: %w", err)
	}
	return nil
}
