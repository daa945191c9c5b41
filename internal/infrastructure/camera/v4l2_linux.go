//go:build linux

package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"sync"

	"github.com/blackjack/webcam"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/scanner"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
)

// compile check: V4L2 implementa la adquisición del pipeline
var _ scanner.Camera = (*V4L2)(nil)

// V4L2 cámara del dispositivo vía Video4Linux. Usa el formato MJPEG del
// dispositivo para poder decodificar cada frame con image/jpeg.
type V4L2 struct {
	Device string
	Width  int
	Height int
}

// Open adquiere el dispositivo en exclusiva y arranca el streaming.
func (c *V4L2) Open(ctx context.Context) (scanner.FrameSource, error) {
	cam, err := webcam.Open(c.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: abrir %s: %w (%v)", c.Device, domain.ErrCameraUnavailable, err)
	}

	format, ok := mjpegFormat(cam.GetSupportedFormats())
	if !ok {
		cam.Close()
		return nil, fmt.Errorf("camera: %s no soporta MJPEG: %w", c.Device, domain.ErrCameraUnavailable)
	}

	if _, _, _, err := cam.SetImageFormat(format, uint32(c.Width), uint32(c.Height)); err != nil {
		cam.Close()
		return nil, fmt.Errorf("camera: fijar formato: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("camera: iniciar streaming: %w", err)
	}

	return &v4l2Source{cam: cam}, nil
}

// mjpegFormat busca el formato MJPEG entre los soportados por el dispositivo.
func mjpegFormat(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	for pf, desc := range formats {
		d := strings.ToUpper(desc)
		if strings.Contains(d, "MJPG") || strings.Contains(d, "JPEG") {
			return pf, true
		}
	}
	return 0, false
}

type v4l2Source struct {
	cam *webcam.Webcam

	mu     sync.Mutex
	closed bool
}

// Next espera el próximo frame MJPEG y lo decodifica.
func (s *v4l2Source) Next(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := s.cam.WaitForFrame(1) // segundos; el timeout permite observar ctx
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			return nil, fmt.Errorf("camera: esperar frame: %w", err)
		}

		frame, err := s.cam.ReadFrame()
		if err != nil {
			return nil, fmt.Errorf("camera: leer frame: %w", err)
		}
		if len(frame) == 0 {
			continue
		}
		img, err := jpeg.Decode(bytes.NewReader(frame))
		if err != nil {
			// frame MJPEG corrupto: no es un candidato, se sigue muestreando
			continue
		}
		return img, nil
	}
}

// Close detiene el streaming y libera el dispositivo. Tolerante a doble cierre.
func (s *v4l2Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cam.StopStreaming()
	return s.cam.Close()
}
