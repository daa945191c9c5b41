package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/application/scanner"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/api"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/barcode"
	"github.com/mazyad-entrepreneur/sync-vault/internal/infrastructure/camera"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/format"
)

func (a *App) scanCmd() *cobra.Command {
	var (
		device string
		dir    string
		manual string
		action string
		qty    int
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Escanear un código de barras y registrar la venta o reposición",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			if action != entity.ActionSale && action != entity.ActionRestock {
				return fmt.Errorf("acción %q: debe ser sale o restock: %w", action, domain.ErrInvalidInput)
			}

			// Entrada manual: misma mutación, sin cámara.
			if manual != "" {
				return a.manualScan(cmd, manual, action, qty)
			}

			var cam scanner.Camera
			if dir != "" {
				cam = &camera.Dir{Path: dir}
			} else {
				if device == "" {
					device = a.cfg.Camera.Device
				}
				cam = &camera.V4L2{Device: device, Width: a.cfg.Camera.Width, Height: a.cfg.Camera.Height}
			}

			pipeline := scanner.New(cam, barcode.New(), a.client, a.log,
				scanner.WithAction(action, qty),
				scanner.WithRecorder(a.store),
			)
			defer pipeline.Stop()

			fmt.Fprintln(a.out, "📷 Point the camera at a barcode...")
			if err := pipeline.Start(cmd.Context()); err != nil {
				fmt.Fprintln(a.out, "Camera unavailable. Retry with --device, or use --barcode for manual entry.")
				return err
			}

			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case ev, ok := <-pipeline.Results():
					if !ok {
						return nil
					}
					a.renderScan(ev)
					if !a.confirm("↻ Scan another?") {
						return nil
					}
					fmt.Fprintln(a.out, "📷 Point the camera at a barcode...")
					if err := pipeline.ScanAnother(cmd.Context()); err != nil {
						return err
					}
				case <-time.After(2 * time.Minute):
					// sin candidato en un rato largo: apagar la cámara y salir
					fmt.Fprintln(a.out, "No barcode detected, stopping camera.")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "dispositivo de video (default de config, ej. /dev/video0)")
	cmd.Flags().StringVar(&dir, "dir", "", "decodificar imágenes de un directorio en vez de la cámara")
	cmd.Flags().StringVar(&manual, "barcode", "", "enviar este código directamente, sin cámara")
	cmd.Flags().StringVar(&action, "action", entity.ActionSale, "sale | restock")
	cmd.Flags().IntVar(&qty, "quantity", 1, "cantidad por escaneo")
	return cmd
}

// manualScan emite la mutación directamente y la registra en el historial.
func (a *App) manualScan(cmd *cobra.Command, code, action string, qty int) error {
	ev := entity.ScanEvent{Barcode: code, Action: action, Quantity: qty, Timestamp: time.Now()}

	resp, err := a.client.Scan(cmd.Context(), dto.ScanRequest{Barcode: code, Action: action, Quantity: qty})
	if err != nil {
		ev.Status = entity.ScanError
		if api.IsNotFound(err) {
			fmt.Fprintf(a.out, "✕ Unknown barcode [%s] — add the product first (syncvault products add)\n", code)
			return err
		}
		a.renderScan(ev)
		return err
	}
	ev.Status = entity.ScanSuccess
	ev.ProductLabel = resp.Label()
	if recErr := a.store.AddScan(ev); recErr != nil {
		a.log.Warn().Err(recErr).Msg("no se pudo guardar el escaneo en el historial")
	}
	a.renderScan(ev)
	return nil
}

func (a *App) renderScan(ev entity.ScanEvent) {
	if ev.Status == entity.ScanSuccess {
		fmt.Fprintf(a.out, "✓ Scanned: %s  [%s]  %s ×%d  %s\n",
			ev.ProductLabel, ev.Barcode, ev.Action, ev.Quantity, format.Timestamp(ev.Timestamp))
		return
	}
	fmt.Fprintf(a.out, "✕ Scan failed: product not found?  [%s]\n", ev.Barcode)
}
