package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/format"
)

func (a *App) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Gestión de productos: carga masiva, listado y altas",
	}
	cmd.AddCommand(
		a.productsUploadCmd(),
		a.productsListCmd(),
		a.productsAddCmd(),
		a.productsDeleteCmd(),
		a.productsSetQtyCmd(),
	)
	return cmd
}

func (a *App) productsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Carga masiva de productos desde un CSV",
		Long: "Sube un CSV con columnas barcode, name, price (y opcionalmente category,\n" +
			"reorder_point, initial_quantity). La validación del contenido la hace el servidor.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}

			path := args[0]
			if !strings.EqualFold(filepath.Ext(path), ".csv") {
				return fmt.Errorf("solo se aceptan archivos .csv: %s", path)
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			fmt.Fprintln(a.out, "Uploading Products...")
			resp, err := a.client.BulkUpload(cmd.Context(), filepath.Base(path), f)
			if err != nil {
				fmt.Fprintln(a.out, "Upload Failed")
				return err
			}

			fmt.Fprintf(a.out, "Products Uploaded Successfully! created=%d skipped=%d\n", resp.Created, resp.Skipped)
			for _, e := range resp.Errors {
				fmt.Fprintf(a.out, "  ! %s\n", e)
			}
			return nil
		},
	}
}

func (a *App) productsListCmd() *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Listar productos con paginación",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			resp, err := a.client.ListProducts(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%d products (showing %d)\n", resp.Total, len(resp.Products))
			for _, p := range resp.Products {
				fmt.Fprintf(a.out, "  #%-5d %-28s %-14s qty=%-5d %s\n",
					p.ID, truncateName(p.Name, 28), p.Barcode, p.CurrentQuantity, format.Currency(p.Price))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "productos a saltar")
	cmd.Flags().IntVar(&limit, "limit", 100, "máximo de productos a mostrar")
	return cmd
}

func (a *App) productsAddCmd() *cobra.Command {
	var (
		in       dto.ProductCreateRequest
		priceStr string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Dar de alta un producto individual",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			price, err := decimal.NewFromString(priceStr)
			if err != nil {
				return fmt.Errorf("precio inválido %q: %w", priceStr, err)
			}
			in.Price = price

			resp, err := a.client.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created #%d %s [%s] qty=%d\n", resp.ID, resp.Name, resp.Barcode, resp.CurrentQuantity)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Barcode, "barcode", "", "código de barras")
	cmd.Flags().StringVar(&in.Name, "name", "", "nombre del producto")
	cmd.Flags().StringVar(&priceStr, "price", "", "precio de venta")
	cmd.Flags().StringVar(&in.Category, "category", "", "categoría (opcional)")
	cmd.Flags().IntVar(&in.ReorderPoint, "reorder-point", 20, "punto de reorden")
	cmd.Flags().IntVar(&in.InitialQuantity, "quantity", 0, "cantidad inicial")
	_ = cmd.MarkFlagRequired("barcode")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (a *App) productsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Eliminar un producto y su inventario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id %q: %w", args[0], domain.ErrInvalidInput)
			}
			if !a.confirm(fmt.Sprintf("Delete product #%d?", id)) {
				return nil
			}
			if err := a.client.DeleteProduct(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Product deleted")
			return nil
		},
	}
}

func (a *App) productsSetQtyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <product-id> <quantity>",
		Short: "Fijar manualmente la cantidad de un producto",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id %q: %w", args[0], domain.ErrInvalidInput)
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil || qty < 0 {
				return fmt.Errorf("cantidad %q: %w", args[1], domain.ErrInvalidInput)
			}
			resp, err := a.client.UpdateQuantity(cmd.Context(), id, qty)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Quantity updated: %d → %d\n", resp.OldQuantity, resp.NewQuantity)
			return nil
		},
	}
}
