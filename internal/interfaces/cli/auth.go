package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/application/session"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
)

func (a *App) loginCmd() *cobra.Command {
	var phone, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Iniciar sesión en la tienda",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if phone == "" {
				if phone, err = a.prompt("Phone: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}

			user, err := a.session.Login(cmd.Context(), phone, password)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					fmt.Fprintln(a.out, "Invalid credentials")
				}
				return err
			}
			fmt.Fprintf(a.out, "Welcome back! Logged in as %s (%s)\n", user.StoreName, user.Phone)
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "teléfono de la tienda")
	cmd.Flags().StringVar(&password, "password", "", "contraseña (se pregunta si se omite)")
	return cmd
}

func (a *App) signupCmd() *cobra.Command {
	var in dto.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Registrar una tienda nueva",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.StoreName == "" {
				if in.StoreName, err = a.prompt("Store name: "); err != nil {
					return err
				}
			}
			if in.Phone == "" {
				if in.Phone, err = a.prompt("Phone: "); err != nil {
					return err
				}
			}
			if in.Password == "" {
				if in.Password, err = a.prompt("Password (min 8 chars): "); err != nil {
					return err
				}
			}

			if _, err := a.session.Signup(cmd.Context(), in); err != nil {
				fmt.Fprintln(a.out, session.FormatSignupError(err))
				return err
			}
			fmt.Fprintln(a.out, "Account created! Please login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Phone, "phone", "", "teléfono de la tienda")
	cmd.Flags().StringVar(&in.StoreName, "store-name", "", "nombre de la tienda")
	cmd.Flags().StringVar(&in.Password, "password", "", "contraseña")
	cmd.Flags().StringVar(&in.Location, "location", "", "ubicación (opcional)")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cerrar sesión y limpiar credenciales locales",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Ver el perfil de la tienda",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}

			// Se intenta el perfil remoto; sin red se muestra el cache local.
			if me, err := a.session.Me(cmd.Context()); err == nil {
				fmt.Fprintf(a.out, "%s\n  phone:    %s\n", me.Name, me.Phone)
				if me.Location != "" {
					fmt.Fprintf(a.out, "  location: %s\n", me.Location)
				}
				fmt.Fprintf(a.out, "  since:    %s\n", me.CreatedAt.Format("02 Jan 2006"))
				return nil
			}

			user := a.session.CurrentUser()
			fmt.Fprintf(a.out, "%s (cached)\n  phone: %s\n", user.StoreName, user.Phone)
			return nil
		},
	}

	cmd.AddCommand(a.changePasswordCmd())
	return cmd
}

func (a *App) changePasswordCmd() *cobra.Command {
	var oldPassword, newPassword string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Cambiar la contraseña de la tienda",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			var err error
			if oldPassword == "" {
				if oldPassword, err = a.prompt("Current password: "); err != nil {
					return err
				}
			}
			if newPassword == "" {
				if newPassword, err = a.prompt("New password (min 8 chars): "); err != nil {
					return err
				}
			}
			if err := a.session.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old", "", "contraseña actual")
	cmd.Flags().StringVar(&newPassword, "new", "", "contraseña nueva")
	return cmd
}
