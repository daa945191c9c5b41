//go:build !linux

package camera

import (
	"context"
	"fmt"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/scanner"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
)

// V4L2 solo está disponible en Linux; en otras plataformas la adquisición falla
// y el pipeline queda en idle, igual que un permiso de cámara denegado.
type V4L2 struct {
	Device string
	Width  int
	Height int
}

func (c *V4L2) Open(ctx context.Context) (scanner.FrameSource, error) {
	return nil, fmt.Errorf("camera: captura V4L2 no soportada en esta plataforma: %w", domain.ErrCameraUnavailable)
}
