package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mazyad-entrepreneur/sync-vault/pkg/format"
)

func (a *App) alertsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Alertas de stock bajo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}

			// Por defecto solo las pendientes; --all incluye las ya reconocidas.
			var acknowledged *bool
			if !all {
				f := false
				acknowledged = &f
			}
			alerts, err := a.client.Alerts(cmd.Context(), acknowledged)
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Fprintln(a.out, "No alerts")
				return nil
			}

			for _, al := range alerts {
				mark := "⚠"
				if al.Acknowledged {
					mark = "✓"
				}
				fmt.Fprintf(a.out, "%s #%-5d %s  %s (%s)\n",
					mark, al.ID, format.Timestamp(al.CreatedAt), al.Message, al.ProductBarcode)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "incluir alertas ya reconocidas")
	cmd.AddCommand(a.alertsAckCmd())
	return cmd
}

func (a *App) alertsAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <alert-id>",
		Short: "Marcar una alerta como reconocida",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id inválido %q", args[0])
			}
			if err := a.client.AcknowledgeAlert(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Alert acknowledged")
			return nil
		},
	}
}
