package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dashboard"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/realtime"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/format"
)

func (a *App) dashboardCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Tablero: valor de inventario, stock bajo y escaneos recientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth()
			if err != nil {
				return err
			}

			uc := dashboard.New(a.client, a.store, a.log)
			snap, err := uc.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			a.renderDashboard(user, snap)

			if !watch {
				return nil
			}

			// Modo en vivo: un canal realtime por usuario; cada inventory_update
			// dispara un refetch completo.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ch := realtime.New(a.cfg.API.WSBaseURL(), user.ID, a.store, realtime.Options{
				ReconnectDelay: a.cfg.Realtime.ReconnectDelay,
				MaxDelay:       a.cfg.Realtime.MaxDelay,
			}, a.log)
			if err := ch.Start(ctx); err != nil {
				return err
			}
			defer ch.Close()

			signals := make(chan struct{}, 1)
			go func() {
				defer close(signals)
				for ev := range ch.Events() {
					switch ev.Kind {
					case realtime.KindInventoryUpdate:
						fmt.Fprintln(a.out, "\n🔄 Inventory Updated")
						select {
						case signals <- struct{}{}:
						default: // refetch ya pendiente
						}
					case realtime.KindAlertCreated:
						fmt.Fprintln(a.out, "\n⚠️  New low-stock alert")
					}
				}
			}()

			fmt.Fprintln(a.out, "\nWatching for updates (Ctrl-C to exit)...")
			uc.Watch(ctx, signals, func(snap *dashboard.Snapshot) {
				a.renderDashboard(user, snap)
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "mantenerse conectado y refrescar con cada actualización")
	return cmd
}

func (a *App) renderDashboard(user *entity.User, snap *dashboard.Snapshot) {
	st := snap.Stats
	fmt.Fprintf(a.out, "\n%s — %s\n", appName, user.StoreName)
	fmt.Fprintf(a.out, "  Total Inventory : %s (%s items)\n",
		format.Currency(st.TotalValue), format.Quantity(int64(st.TotalProducts)))
	fmt.Fprintf(a.out, "  Low Stock       : %d\n", st.LowStockCount)

	if len(snap.Products) == 0 {
		fmt.Fprintln(a.out, "\nNo products found. Use 'syncvault products upload' to add some.")
	} else {
		fmt.Fprintln(a.out, "\nInventory Status")
		for _, p := range snap.Products {
			fmt.Fprintf(a.out, "  %-10s %-28s %4d %s  %s\n",
				statusTag(p), truncateName(p.Name, 28), p.Quantity, p.Unit, format.Currency(p.Price))
		}
	}

	if len(st.RecentScans) > 0 {
		fmt.Fprintln(a.out, "\nRecent Scans")
		for _, ev := range st.RecentScans {
			label := ev.ProductLabel
			if ev.Status == entity.ScanError {
				label = "(failed)"
			}
			fmt.Fprintf(a.out, "  %s  %-24s %s ×%d  [%s]\n",
				format.Timestamp(ev.Timestamp), label, ev.Action, ev.Quantity, ev.Barcode)
		}
	}
}

func statusTag(p entity.Product) string {
	switch domain.ClassifyStock(p.Quantity, p.ReorderPoint) {
	case domain.StockCritical:
		return "[CRITICAL]"
	case domain.StockLow:
		return "[LOW]"
	default:
		return "[OK]"
	}
}

func truncateName(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
