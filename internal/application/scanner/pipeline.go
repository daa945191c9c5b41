// Package scanner implementa el pipeline de escaneo: video continuo → decodificar
// → debounce → una única mutación de inventario por presentación física del
// código. Estados: idle → scanning → submitting → result-shown.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mazyad-entrepreneur/sync-vault/internal/application/dto"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
	"github.com/mazyad-entrepreneur/sync-vault/internal/domain/entity"
	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

// State estado del pipeline.
type State int

const (
	StateIdle State = iota // cámara apagada
	StateScanning          // cámara encendida, bucle de decodificación activo
	StateSubmitting        // candidato aceptado, mutación en vuelo
	StateResultShown       // resultado visible, a la espera de "scan another"
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateSubmitting:
		return "submitting"
	case StateResultShown:
		return "result-shown"
	default:
		return "idle"
	}
}

// Pipeline máquina de estados del escaneo. Una instancia = un dispositivo de
// cámara; nunca hay dos adquisiciones ni dos submissions simultáneas.
type Pipeline struct {
	camera   Camera
	decoder  Decoder
	api      ScanAPI
	recorder Recorder
	log      *logger.Logger

	action   string
	quantity int

	mu       sync.Mutex
	state    State
	inFlight bool
	lastScan *entity.ScanEvent
	cancel   context.CancelFunc
	done     chan struct{}

	results chan entity.ScanEvent
}

// Option configura el pipeline.
type Option func(*Pipeline)

// WithAction cambia la acción y cantidad por defecto (sale, 1).
func WithAction(action string, quantity int) Option {
	return func(p *Pipeline) {
		if action != "" {
			p.action = action
		}
		if quantity > 0 {
			p.quantity = quantity
		}
	}
}

// WithRecorder registra los escaneos en el historial local.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New construye el pipeline en estado idle.
func New(camera Camera, decoder Decoder, api ScanAPI, log *logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{
		camera:   camera,
		decoder:  decoder,
		api:      api,
		log:      log.Component("scanner"),
		action:   entity.ActionSale,
		quantity: 1,
		state:    StateIdle,
		results:  make(chan entity.ScanEvent, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State estado actual.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastScan último resultado mostrado, o nil.
func (p *Pipeline) LastScan() *entity.ScanEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastScan == nil {
		return nil
	}
	ev := *p.lastScan
	return &ev
}

// Results entrega cada resultado de escaneo. Buffer de 1: el siguiente intento
// sobreescribe conceptualmente al anterior.
func (p *Pipeline) Results() <-chan entity.ScanEvent {
	return p.results
}

// Start adquiere la cámara y arranca el bucle de decodificación. Falla si la
// cámara no está disponible (el estado vuelve a idle) o si hay un resultado sin
// confirmar (el único camino de rearme es ScanAnother).
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return fmt.Errorf("scanner: pipeline en estado %s: %w", p.state, domain.ErrScanInFlight)
	}
	if p.lastScan != nil {
		p.mu.Unlock()
		return fmt.Errorf("scanner: resultado pendiente de confirmar, use ScanAnother")
	}
	// Reclamar el pipeline antes de soltar el lock: abrir la cámara es lento y
	// dos Start concurrentes no pueden pasar el chequeo a la vez.
	p.state = StateScanning
	p.mu.Unlock()

	return p.acquire(ctx)
}

// ScanAnother limpia el resultado mostrado y rearma el escaneo. El rearme y el
// reclamo ocurren bajo el mismo lock.
func (p *Pipeline) ScanAnother(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle && p.state != StateResultShown {
		p.mu.Unlock()
		return fmt.Errorf("scanner: pipeline en estado %s: %w", p.state, domain.ErrScanInFlight)
	}
	p.lastScan = nil
	p.state = StateScanning
	p.mu.Unlock()

	return p.acquire(ctx)
}

// acquire abre la cámara con el pipeline ya reclamado (estado scanning). Si la
// adquisición falla, o si Stop llegó mientras tanto, el estado vuelve a idle.
func (p *Pipeline) acquire(ctx context.Context) error {
	src, err := p.camera.Open(ctx)
	if err != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		p.log.Warn().Err(err).Msg("adquisición de cámara fallida")
		return fmt.Errorf("scanner: %w: %v", domain.ErrCameraUnavailable, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.state != StateScanning {
		p.mu.Unlock()
		cancel()
		src.Close()
		return nil
	}
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.loop(loopCtx, src, done)
	return nil
}

// Stop apaga la cámara y cancela el bucle. Espera a que el bucle termine, por lo
// que tras Stop no queda ningún goroutine del pipeline vivo. Idempotente.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	p.mu.Lock()
	if p.state == StateScanning || p.state == StateSubmitting {
		p.state = StateIdle
	}
	p.mu.Unlock()
}

// loop muestreo de frames: decodifica hasta encontrar un candidato aceptable.
// La cámara se libera en todos los caminos de salida.
func (p *Pipeline) loop(ctx context.Context, src FrameSource, done chan struct{}) {
	defer close(done)
	defer src.Close()

	for {
		img, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Warn().Err(err).Msg("fuente de frames terminó")
				p.mu.Lock()
				if p.state == StateScanning {
					p.state = StateIdle
				}
				p.mu.Unlock()
			}
			return
		}

		code, ok := p.decoder.Decode(img)
		if !ok || !p.accept() {
			continue
		}

		// Candidato aceptado: detener la captura ANTES de la llamada de red para
		// que los frames repetidos del mismo código no re-disparen el escaneo.
		src.Close()
		p.submit(ctx, code)
		return
	}
}

// accept regla de debounce: un candidato entra solo si el pipeline sigue
// escaneando, no hay submission en vuelo y no hay resultado sin confirmar.
func (p *Pipeline) accept() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateScanning || p.inFlight || p.lastScan != nil {
		return false
	}
	p.inFlight = true
	p.state = StateSubmitting
	return true
}

// submit emite exactamente una mutación de inventario y publica el resultado.
func (p *Pipeline) submit(ctx context.Context, code string) {
	ev := entity.ScanEvent{
		Barcode:   code,
		Action:    p.action,
		Quantity:  p.quantity,
		Timestamp: time.Now(),
	}

	resp, err := p.api.Scan(ctx, dto.ScanRequest{Barcode: code, Action: p.action, Quantity: p.quantity})
	if err != nil {
		p.log.Warn().Err(err).Str("barcode", code).Msg("escaneo rechazado por el servidor")
		ev.Status = entity.ScanError
	} else {
		ev.Status = entity.ScanSuccess
		ev.ProductLabel = resp.Label()
		if p.recorder != nil {
			if recErr := p.recorder.AddScan(ev); recErr != nil {
				p.log.Warn().Err(recErr).Msg("no se pudo guardar el escaneo en el historial")
			}
		}
	}

	p.mu.Lock()
	p.inFlight = false
	p.lastScan = &ev
	p.state = StateResultShown
	p.mu.Unlock()

	// buffer de 1: descartar el resultado anterior si nadie lo leyó
	select {
	case p.results <- ev:
	default:
		select {
		case <-p.results:
		default:
		}
		p.results <- ev
	}
}
