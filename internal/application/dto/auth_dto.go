package dto

import (
	"time"

	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
)

// LoginRequest cuerpo de POST /auth/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AuthResponse respuesta de POST /auth/login.
// El contrato del servidor es parcial: algunas versiones devuelven el objeto user
// completo, otras solo store_id/store_name. El caso de uso de sesión tolera ambas.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	StoreID     int64        `json:"store_id"`
	StoreName   string       `json:"store_name"`
	User        *entity.User `json:"user,omitempty"`
}

// SignupRequest cuerpo de POST /auth/signup. No autentica; tras registrarse el
// usuario debe hacer login.
type SignupRequest struct {
	Phone     string `json:"phone"`
	StoreName string `json:"store_name"`
	Password  string `json:"password"`
	Location  string `json:"location,omitempty"`
}

// StoreResponse respuesta de signup y de GET /auth/me.
type StoreResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location,omitempty"`
	APIKey    string    `json:"api_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangePasswordRequest cuerpo de POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
