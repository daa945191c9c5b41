package scanner

import (
	"context"
	"image"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
)

// FrameSource entrega frames de video ya adquiridos. Next bloquea hasta el
// próximo frame disponible; devuelve error al agotarse la fuente o cancelarse ctx.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Camera adquiere el dispositivo de captura. Open con fallo (permiso denegado,
// sin cámara) deja el pipeline en idle; nunca se reintenta solo.
type Camera interface {
	Open(ctx context.Context) (FrameSource, error)
}

// Decoder intenta extraer un código de barras de un frame. false = sin candidato.
type Decoder interface {
	Decode(img image.Image) (string, bool)
}

// ScanAPI emite la mutación de inventario de un escaneo.
type ScanAPI interface {
	Scan(ctx context.Context, in dto.ScanRequest) (*dto.ScanResponse, error)
}

// Recorder guarda los escaneos exitosos en el historial local. Opcional.
type Recorder interface {
	AddScan(ev entity.ScanEvent) error
}
