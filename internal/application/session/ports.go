package session

import (
	"context"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
)

// AuthAPI operaciones de autenticación del servicio remoto.
type AuthAPI interface {
	Login(ctx context.Context, phone, password string) (*dto.AuthResponse, error)
	Signup(ctx context.Context, in dto.SignupRequest) (*dto.StoreResponse, error)
	Me(ctx context.Context) (*dto.StoreResponse, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}

// TokenStore persistencia local del token y del perfil cacheado.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
	User() (*entity.User, bool)
	SetUser(u *entity.User) error
	ClearUser() error
}
