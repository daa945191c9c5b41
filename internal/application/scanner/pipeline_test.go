package scanner_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/application/scanner"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeSource entrega el mismo frame indefinidamente, simulando una cámara
// apuntada a un código fijo. Registra si (y cuándo) fue cerrada.
type fakeSource struct {
	mu       sync.Mutex
	closed   bool
	frames   int
	frameErr error
}

func (f *fakeSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.New("fuente cerrada")
	}
	if f.frameErr != nil {
		return nil, f.frameErr
	}
	f.frames++
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeCamera struct {
	src     *fakeSource
	openErr error
	opens   int
}

func (f *fakeCamera) Open(ctx context.Context) (scanner.FrameSource, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.src == nil {
		f.src = &fakeSource{}
	}
	return f.src, nil
}

// fakeDecoder devuelve siempre el mismo código: cada frame es un candidato.
type fakeDecoder struct{ code string }

func (f fakeDecoder) Decode(img image.Image) (string, bool) {
	if f.code == "" {
		return "", false
	}
	return f.code, true
}

type fakeScanAPI struct {
	mu           sync.Mutex
	calls        int
	scanErr      error
	srcAtCall    *fakeSource
	closedAtCall bool
}

func (f *fakeScanAPI) Scan(ctx context.Context, in dto.ScanRequest) (*dto.ScanResponse, error) {
	f.mu.Lock()
	f.calls++
	if f.srcAtCall != nil {
		f.closedAtCall = f.srcAtCall.isClosed()
	}
	f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return &dto.ScanResponse{Success: true, ProductName: "Arroz", NewQuantity: 39}, nil
}

func (f *fakeScanAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu    sync.Mutex
	scans []entity.ScanEvent
}

func (f *fakeRecorder) AddScan(ev entity.ScanEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, ev)
	return nil
}

func waitResult(t *testing.T, p *scanner.Pipeline) entity.ScanEvent {
	t.Helper()
	select {
	case ev := <-p.Results():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("el pipeline nunca publicó un resultado")
		return entity.ScanEvent{}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Debounce — una única mutación por presentación física del código
// ──────────────────────────────────────────────────────────────────────────────

func TestPipeline_CandidatosRepetidosUnaSolaLlamada(t *testing.T) {
	cam := &fakeCamera{}
	api := &fakeScanAPI{}
	p := scanner.New(cam, fakeDecoder{code: "7501001234"}, api, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	ev := waitResult(t, p)

	assert.Equal(t, entity.ScanSuccess, ev.Status)
	assert.Equal(t, "Arroz", ev.ProductLabel)
	assert.Equal(t, 1, api.callCount(),
		"muchos frames del mismo código deben producir exactamente una mutación")
	assert.Equal(t, scanner.StateResultShown, p.State())
}

func TestPipeline_CamaraCerradaAntesDeLaLlamada(t *testing.T) {
	src := &fakeSource{}
	cam := &fakeCamera{src: src}
	api := &fakeScanAPI{srcAtCall: src}
	p := scanner.New(cam, fakeDecoder{code: "7501001234"}, api, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	waitResult(t, p)

	assert.True(t, api.closedAtCall,
		"la captura se detiene antes de la llamada de red, no después")
}

func TestPipeline_ResultadoPendienteBloqueaStart(t *testing.T) {
	cam := &fakeCamera{}
	api := &fakeScanAPI{}
	p := scanner.New(cam, fakeDecoder{code: "7501001234"}, api, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	waitResult(t, p)
	p.Stop()

	err := p.Start(context.Background())
	require.Error(t, err, "con un resultado sin confirmar el único camino es ScanAnother")
	assert.Equal(t, 1, api.callCount())
}

func TestPipeline_ScanAnotherRearma(t *testing.T) {
	cam := &fakeCamera{}
	api := &fakeScanAPI{}
	p := scanner.New(cam, fakeDecoder{code: "7501001234"}, api, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	first := waitResult(t, p)

	// El fake reutiliza la fuente; reabrir la "cámara" para el segundo intento.
	cam.src = nil
	require.NoError(t, p.ScanAnother(context.Background()))
	second := waitResult(t, p)

	assert.Equal(t, first.Barcode, second.Barcode)
	assert.Equal(t, 2, api.callCount(), "ScanAnother permite exactamente una nueva mutación")
	assert.Equal(t, 2, cam.opens)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores y ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestPipeline_CamaraNoDisponible(t *testing.T) {
	cam := &fakeCamera{openErr: errors.New("/dev/video0: permission denied")}
	p := scanner.New(cam, fakeDecoder{code: "X"}, &fakeScanAPI{}, nil)

	err := p.Start(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCameraUnavailable)
	assert.Equal(t, scanner.StateIdle, p.State(), "un fallo de adquisición deja el pipeline en idle")
}

// slowCamera tarda en abrir, como un dispositivo V4L2 real arrancando el
// streaming. Cuenta las adquisiciones.
type slowCamera struct {
	delay time.Duration

	mu    sync.Mutex
	opens int
}

func (c *slowCamera) Open(ctx context.Context) (scanner.FrameSource, error) {
	time.Sleep(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opens++
	return &fakeSource{}, nil
}

func (c *slowCamera) openCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

func TestPipeline_StartConcurrenteAdquiereUnaVez(t *testing.T) {
	cam := &slowCamera{delay: 50 * time.Millisecond}
	p := scanner.New(cam, fakeDecoder{}, &fakeScanAPI{}, nil)
	defer p.Stop()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- p.Start(context.Background()) }()
	}
	err1, err2 := <-errs, <-errs

	assert.True(t, (err1 == nil) != (err2 == nil),
		"exactamente un Start debe ganar, el otro recibe error")
	if err1 != nil {
		assert.ErrorIs(t, err1, domain.ErrScanInFlight)
	} else {
		assert.ErrorIs(t, err2, domain.ErrScanInFlight)
	}
	assert.Equal(t, 1, cam.openCount(), "nunca hay dos adquisiciones de cámara simultáneas")
	assert.Equal(t, scanner.StateScanning, p.State())
}

func TestPipeline_FuenteFallidaVuelveAIdle(t *testing.T) {
	src := &fakeSource{frameErr: errors.New("dispositivo desconectado")}
	cam := &fakeCamera{src: src}
	api := &fakeScanAPI{}
	p := scanner.New(cam, fakeDecoder{code: "X"}, api, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))

	require.Eventually(t, func() bool { return p.State() == scanner.StateIdle },
		5*time.Second, 10*time.Millisecond, "un error de captura devuelve el pipeline a idle")
	assert.Equal(t, 0, api.callCount())
	assert.True(t, src.isClosed(), "la cámara se libera en todos los caminos de salida")
}

func TestPipeline_ErrorDelServidorPublicaResultadoFallido(t *testing.T) {
	cam := &fakeCamera{}
	api := &fakeScanAPI{scanErr: errors.New("404 product not found")}
	rec := &fakeRecorder{}
	p := scanner.New(cam, fakeDecoder{code: "000000"}, api, nil, scanner.WithRecorder(rec))
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	ev := waitResult(t, p)

	assert.Equal(t, entity.ScanError, ev.Status)
	assert.Empty(t, ev.ProductLabel)
	assert.Empty(t, rec.scans, "los escaneos fallidos no entran al historial")
	assert.Equal(t, scanner.StateResultShown, p.State(), "el fallo también se muestra como resultado")
}

func TestPipeline_RecorderGuardaEscaneosExitosos(t *testing.T) {
	cam := &fakeCamera{}
	rec := &fakeRecorder{}
	p := scanner.New(cam, fakeDecoder{code: "7501001234"}, &fakeScanAPI{}, nil,
		scanner.WithAction(entity.ActionRestock, 5), scanner.WithRecorder(rec))
	defer p.Stop()

	require.NoError(t, p.Start(context.Background()))
	waitResult(t, p)

	require.Len(t, rec.scans, 1)
	assert.Equal(t, entity.ActionRestock, rec.scans[0].Action)
	assert.Equal(t, 5, rec.scans[0].Quantity)
	assert.Equal(t, "Arroz", rec.scans[0].ProductLabel)
}

func TestPipeline_StopLiberaLaCamara(t *testing.T) {
	src := &fakeSource{}
	cam := &fakeCamera{src: src}
	// Decoder que nunca encuentra candidato: el bucle gira hasta que lo detengan.
	p := scanner.New(cam, fakeDecoder{}, &fakeScanAPI{}, nil)

	require.NoError(t, p.Start(context.Background()))
	require.Equal(t, scanner.StateScanning, p.State())

	p.Stop()
	p.Stop() // idempotente

	assert.Equal(t, scanner.StateIdle, p.State())
	assert.True(t, src.isClosed())
}
