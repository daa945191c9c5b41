// Package session implementa la sesión de autenticación del cliente: una máquina
// de estados {loading, anonymous, authenticated} sobre el token y el perfil
// persistidos localmente. A lo sumo un par token/usuario vivo por instancia.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/api"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

// State estado de la sesión.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "loading"
	}
}

// signupFallback mensaje genérico cuando el servidor no entrega un detail usable.
const signupFallback = "Signup failed"

// Session sesión del proceso. Los comandos (views) consultan State y CurrentUser
// para decidir si renderizan o exigen login.
type Session struct {
	api   AuthAPI
	store TokenStore
	log   *logger.Logger

	mu    sync.RWMutex
	state State
	user  *entity.User

	subs []chan State
}

// New construye la sesión en estado loading; Restore la resuelve.
func New(authAPI AuthAPI, store TokenStore, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		api:   authAPI,
		store: store,
		log:   log.Component("session"),
		state: StateLoading,
	}
}

// Restore resuelve el estado inicial desde el almacenamiento local:
//   - sin token → anonymous
//   - token sin perfil parseable → anonymous y token eliminado (un token sin
//     identidad cacheada no es de fiar)
//   - token JWT ya expirado (verificación local, sin firma) → mismo tratamiento
//   - token + perfil → authenticated
func (s *Session) Restore() State {
	token, ok := s.store.Token()
	if !ok {
		return s.transition(StateAnonymous, nil)
	}

	if tokenExpired(token) {
		s.log.Debug().Msg("token persistido expirado, sesión invalidada")
		s.clearStored()
		return s.transition(StateAnonymous, nil)
	}

	user, ok := s.store.User()
	if !ok {
		s.log.Debug().Msg("token sin perfil cacheado, sesión invalidada")
		s.clearStored()
		return s.transition(StateAnonymous, nil)
	}

	return s.transition(StateAuthenticated, user)
}

// Login autentica con phone/password. En éxito persiste token y perfil y pasa a
// authenticated; en fallo el estado queda en anonymous y el error se propaga.
func (s *Session) Login(ctx context.Context, phone, password string) (*entity.User, error) {
	resp, err := s.api.Login(ctx, phone, password)
	if err != nil {
		s.transition(StateAnonymous, nil)
		if api.IsUnauthorized(err) {
			return nil, fmt.Errorf("session: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("session: login: %w", err)
	}

	if err := s.store.SetToken(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("session: persistir token: %w", err)
	}

	user := resolveUser(resp, phone)
	if err := s.store.SetUser(user); err != nil {
		return nil, fmt.Errorf("session: persistir perfil: %w", err)
	}

	s.transition(StateAuthenticated, user)
	return user, nil
}

// resolveUser tolera el contrato parcial del servidor: objeto user completo,
// solo store_id/store_name, o nada (se sintetiza {1, phone, "My Store"}).
func resolveUser(resp *dto.AuthResponse, phone string) *entity.User {
	switch {
	case resp.User != nil:
		return resp.User
	case resp.StoreID != 0:
		return &entity.User{ID: resp.StoreID, Phone: phone, StoreName: resp.StoreName}
	default:
		return &entity.User{ID: 1, Phone: phone, StoreName: "My Store"}
	}
}

// Signup registra una tienda nueva. No autentica: tras el registro el usuario
// debe hacer login. El error se propaga tal cual; FormatSignupError lo convierte
// en el mensaje a mostrar.
func (s *Session) Signup(ctx context.Context, in dto.SignupRequest) (*dto.StoreResponse, error) {
	out, err := s.api.Signup(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("session: signup: %w", err)
	}
	return out, nil
}

// FormatSignupError mensaje a mostrar por un fallo de signup, inspeccionando el
// detail estructuralmente: lista de errores de campo → msg del primero; string →
// tal cual; cualquier otra cosa → fallback genérico fijo.
func FormatSignupError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail.FirstMessage(signupFallback)
	}
	return signupFallback
}

// Logout limpia token y perfil persistidos y el usuario en memoria, y vuelve a
// anonymous sea cual sea el estado previo. Los fallos de limpieza se registran
// pero no impiden la transición.
func (s *Session) Logout() {
	s.clearStored()
	s.transition(StateAnonymous, nil)
}

// ChangePassword cambia la contraseña de la tienda autenticada.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if s.State() != StateAuthenticated {
		return domain.ErrNotAuthenticated
	}
	if err := s.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return fmt.Errorf("session: cambiar contraseña: %w", err)
	}
	return nil
}

// Me consulta el perfil remoto y refresca el cache local.
func (s *Session) Me(ctx context.Context) (*dto.StoreResponse, error) {
	if s.State() != StateAuthenticated {
		return nil, domain.ErrNotAuthenticated
	}
	out, err := s.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: perfil: %w", err)
	}
	user := &entity.User{ID: out.ID, Phone: out.Phone, StoreName: out.Name}
	if err := s.store.SetUser(user); err == nil {
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
	}
	return out, nil
}

// State estado actual.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser usuario autenticado (copia), o nil.
func (s *Session) CurrentUser() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Subscribe notifica cada cambio de estado. Entrega sin bloquear: un suscriptor
// atrasado pierde estados intermedios, nunca el último (buffer de 1).
func (s *Session) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan State, 1)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Session) transition(state State, user *entity.User) State {
	s.mu.Lock()
	changed := s.state != state || s.user != user
	s.state = state
	s.user = user
	subs := s.subs
	s.mu.Unlock()

	if changed {
		for _, ch := range subs {
			select {
			case ch <- state:
			default:
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- state:
				default:
				}
			}
		}
	}
	return state
}

func (s *Session) clearStored() {
	if err := s.store.ClearToken(); err != nil {
		s.log.Warn().Err(err).Msg("no se pudo eliminar el token")
	}
	if err := s.store.ClearUser(); err != nil {
		s.log.Warn().Err(err).Msg("no se pudo eliminar el perfil cacheado")
	}
}

// tokenExpired verificación local de expiración para tokens JWT. El parseo es
// sin firma (el secreto vive en el servidor); un token opaco o sin exp no
// produce veredicto y se deja que lo rechace la primera llamada autenticada.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
