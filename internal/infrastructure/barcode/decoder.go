// Package barcode adapta gozxing como decodificador de frames para el pipeline
// de escaneo. Intenta QR primero (etiquetas internas de tienda) y después los
// formatos lineales de retail (EAN/UPC y Code 128).
package barcode

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decoder decodificador multi-formato. No es seguro para uso concurrente; el
// pipeline lo invoca desde un único goroutine de decodificación.
type Decoder struct {
	readers []gozxing.Reader
}

// New construye el decodificador con los lectores por defecto.
func New() *Decoder {
	return &Decoder{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			oned.NewMultiFormatUPCEANReader(nil),
			oned.NewCode128Reader(),
		},
	}
}

// Decode intenta extraer un código del frame. La ausencia de candidato no es un
// error: es el estado normal del bucle de escaneo.
func (d *Decoder) Decode(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	for _, r := range d.readers {
		if result, err := r.Decode(bmp, nil); err == nil {
			return result.GetText(), true
		}
	}
	return "", false
}
