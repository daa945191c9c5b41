// Package camera implementa las fuentes de frames del pipeline de escaneo: la
// cámara del dispositivo (V4L2 en Linux) y una fuente de imágenes en disco para
// desarrollo y pruebas sin hardware.
package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // registrar decodificadores
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/scanner"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
)

var _ scanner.Camera = (*Dir)(nil)

// Dir fuente de frames que recorre las imágenes (jpg/png) de un directorio en
// orden de nombre. Al agotarse, Next devuelve io.EOF y el pipeline vuelve a idle.
type Dir struct {
	Path string
}

// Open lista las imágenes del directorio. Directorio vacío o inexistente cuenta
// como cámara no disponible.
func (d *Dir) Open(ctx context.Context) (scanner.FrameSource, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("camera: leer %s: %w (%v)", d.Path, domain.ErrCameraUnavailable, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(d.Path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("camera: sin imágenes en %s: %w", d.Path, domain.ErrCameraUnavailable)
	}
	sort.Strings(files)

	return &dirSource{files: files}, nil
}

type dirSource struct {
	files []string
	pos   int
}

func (s *dirSource) Next(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.pos >= len(s.files) {
			return nil, io.EOF
		}
		path := s.files[s.pos]
		s.pos++

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue // archivo no decodificable: se salta, como un frame corrupto
		}
		return img, nil
	}
}

func (s *dirSource) Close() error { return nil }
