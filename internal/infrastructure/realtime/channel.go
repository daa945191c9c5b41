// Package realtime implementa el canal websocket de actualizaciones en vivo.
// Un canal por usuario autenticado: se conecta a <ws-base>/ws/{storeID}?token=…,
// reconecta solo (backoff exponencial con tope) y entrega los mensajes entrantes
// como eventos tipados. Los payloads malformados se registran y descartan sin
// cerrar el canal.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mazyad-entrepreneur/sync-vault/pkg/logger"
)

// State estado de la conexión.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// EventKind clasificación de los mensajes entrantes. Solo inventory_update tiene
// efecto propio (dispara un refetch); el resto se entrega sin interpretación.
type EventKind int

const (
	KindOther EventKind = iota
	KindInventoryUpdate
	KindAlertCreated
)

// Envelope sobre JSON de los mensajes del servidor.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event mensaje entregado a los suscriptores.
type Event struct {
	Kind     EventKind
	Envelope Envelope
}

// TokenProvider entrega el token vigente; se consulta en cada intento de conexión
// para que una renovación de sesión se refleje en la reconexión.
type TokenProvider interface {
	Token() (string, bool)
}

// Options parámetros de reconexión.
type Options struct {
	ReconnectDelay time.Duration // delay tras el primer cierre (default 3s)
	MaxDelay       time.Duration // tope del backoff (default 60s)
}

const eventBuffer = 16

// Channel conexión realtime de un usuario. A lo sumo una conexión abierta por
// instancia; la reconexión es indefinida mientras el canal siga arrancado.
type Channel struct {
	wsBase string
	userID int64
	tokens TokenProvider
	opts   Options
	log    *logger.Logger

	dialer *websocket.Dialer
	events chan Event
	state  atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New construye el canal para el usuario indicado. No conecta todavía.
func New(wsBase string, userID int64, tokens TokenProvider, opts Options, log *logger.Logger) *Channel {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 3 * time.Second
	}
	if opts.MaxDelay < opts.ReconnectDelay {
		opts.MaxDelay = opts.ReconnectDelay
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Channel{
		wsBase: wsBase,
		userID: userID,
		tokens: tokens,
		opts:   opts,
		log:    log.Component("realtime"),
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		events: make(chan Event, eventBuffer),
	}
}

// Events canal de entrega a los suscriptores. Se cierra al terminar el canal.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// State estado actual de la conexión.
func (c *Channel) State() State {
	return State(c.state.Load())
}

// Start lanza el bucle conectar/leer/reconectar. Sin userID no hay conexión.
func (c *Channel) Start(ctx context.Context) error {
	if c.userID == 0 {
		return fmt.Errorf("realtime: userID no establecido")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return fmt.Errorf("realtime: canal ya arrancado")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(runCtx)
	return nil
}

// Close detiene el bucle, cierra el socket y cancela cualquier reconexión
// pendiente. Idempotente.
func (c *Channel) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run mantiene el ciclo disconnected → connecting → connected → disconnected.
// Exactamente una reconexión programada por cierre; el backoff se reinicia tras
// cada conexión exitosa.
func (c *Channel) run(ctx context.Context) {
	defer func() {
		c.state.Store(int32(StateDisconnected))
		close(c.events)
		close(c.done)
	}()

	delay := c.opts.ReconnectDelay
	for {
		c.state.Store(int32(StateConnecting))
		conn, _, err := c.dialer.DialContext(ctx, c.buildURL(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn().Err(err).Msg("conexión websocket fallida")
			c.state.Store(int32(StateDisconnected))
		} else {
			c.state.Store(int32(StateConnected))
			c.log.Debug().Int64("user_id", c.userID).Msg("websocket conectado")
			delay = c.opts.ReconnectDelay // conexión exitosa: reinicia el backoff

			c.readUntilClosed(ctx, conn)
			c.state.Store(int32(StateDisconnected))
			c.log.Debug().Msg("websocket cerrado, reintentando")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay *= 2; delay > c.opts.MaxDelay {
			delay = c.opts.MaxDelay
		}
	}
}

// readUntilClosed consume mensajes hasta que la conexión se cierra o ctx termina.
func (c *Channel) readUntilClosed(ctx context.Context, conn *websocket.Conn) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		// ReadMessage no acepta context; cerrar el socket lo desbloquea.
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
			// payload malformado: se registra y se descarta, el canal sigue abierto
			c.log.Warn().Err(err).Str("raw", truncate(string(raw), 256)).Msg("mensaje realtime malformado")
			continue
		}
		c.deliver(Event{Kind: kindOf(env.Type), Envelope: env})
	}
}

// deliver entrega sin bloquear; si el suscriptor va atrasado se descarta el
// mensaje (el dashboard refetchea completo, no hay estado incremental que perder).
func (c *Channel) deliver(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn().Str("type", ev.Envelope.Type).Msg("suscriptor atrasado, mensaje descartado")
	}
}

func (c *Channel) buildURL() string {
	u := fmt.Sprintf("%s/ws/%d", c.wsBase, c.userID)
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			u += "?token=" + url.QueryEscape(token)
		}
	}
	return u
}

func kindOf(msgType string) EventKind {
	switch msgType {
	case "inventory_update":
		return KindInventoryUpdate
	case "alert_created":
		return KindAlertCreated
	default:
		return KindOther
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
