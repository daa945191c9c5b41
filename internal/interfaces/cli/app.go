// Package cli contiene los comandos del cliente. Son la capa de presentación:
// renderizan estado y despachan acciones; toda la lógica vive en los casos de
// uso y en la infraestructura.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/session"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/api"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/store"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/config"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

const appName = "SyncVault AI"

// App dependencias compartidas por los comandos.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *store.SQLiteStore
	client  *api.Client
	session *session.Session

	out io.Writer
	in  io.Reader
}

// NewApp construye la aplicación CLI con sus dependencias ya cableadas.
func NewApp(cfg *config.Config, log *logger.Logger, st *store.SQLiteStore, client *api.Client, sess *session.Session) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		client:  client,
		session: sess,
		out:     os.Stdout,
		in:      os.Stdin,
	}
}

// Root comando raíz con todos los subcomandos registrados.
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "syncvault",
		Short:         appName + " — inventario para tiendas de barrio",
		Long:          appName + ": cliente de inventario con escaneo de códigos de barras, tablero en vivo y carga masiva de productos.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.profileCmd(),
		a.dashboardCmd(),
		a.scanCmd(),
		a.productsCmd(),
		a.alertsCmd(),
	)
	return root
}

// requireAuth restaura la sesión y exige estar autenticado: es el equivalente
// del redirect a /login de un cliente web.
func (a *App) requireAuth() (*entity.User, error) {
	if a.session.Restore() != session.StateAuthenticated {
		return nil, fmt.Errorf("please login first (syncvault login): %w", domain.ErrNotAuthenticated)
	}
	return a.session.CurrentUser(), nil
}

// prompt lee una línea de la entrada estándar.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	r := bufio.NewReader(a.in)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm pregunta sí/no; por defecto no.
func (a *App) confirm(label string) bool {
	answer, err := a.prompt(label + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
