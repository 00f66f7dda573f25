// Package plc gestiona el ciclo de vida del enlace con el controlador industrial:
// conexión con reintentos, una operación por enlace, liberación garantizada y sonda de salud.
package plc

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
	"github.com/jhoicas/almacen-bridge/pkg/retry"
)

// Estados reportados por Status.
const (
	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
)

const closeTimeout = 2 * time.Second

// Config parámetros del enlace.
type Config struct {
	Retries        int           // intentos de conexión (por defecto 3)
	RetryDelay     time.Duration // espera entre intentos (por defecto 2s)
	RequestTimeout time.Duration // límite por operación de lectura/escritura
	Namespace      int           // namespace de los nodos del almacén
	Sleep          retry.Sleeper // nil = espera real
}

// Health resultado de la sonda de salud.
type Health struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// LinkManager dueño del enlace con el PLC.
type LinkManager struct {
	dialer  Dialer
	policy  retry.Policy
	timeout time.Duration
	ns      int
	log     zerolog.Logger
}

// NewLinkManager construye el gestor con valores por defecto 3 intentos / 2s.
func NewLinkManager(dialer Dialer, cfg Config, log zerolog.Logger) *LinkManager {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.Namespace <= 0 {
		cfg.Namespace = 2
	}
	return &LinkManager{
		dialer: dialer,
		policy: retry.Policy{
			Attempts: cfg.Retries,
			Delay:    cfg.RetryDelay,
			Sleep:    cfg.Sleep,
		},
		timeout: cfg.RequestTimeout,
		ns:      cfg.Namespace,
		log:     log.With().Str("component", "plc").Logger(),
	}
}

// Namespace namespace OPC UA configurado.
func (m *LinkManager) Namespace() int { return m.ns }

// MaxLatency cota del tiempo que un caller puede esperar por una operación.
func (m *LinkManager) MaxLatency() time.Duration {
	return m.policy.MaxWait() + time.Duration(m.policy.Attempts+1)*m.timeout
}

// Connect intenta abrir un enlace hasta Retries veces. Cada intento fallido queda registrado.
func (m *LinkManager) Connect(ctx context.Context) (Conn, error) {
	var conn Conn
	attempts, err := m.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		c, err := m.dialer.Dial(ctx)
		if err != nil {
			m.log.Error().Err(err).
				Int("attempt", attempt).
				Int("max_attempts", m.policy.Attempts).
				Msg("fallo al conectar con el PLC")
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, &OpError{Op: "connect", Attempts: attempts, Kind: domain.ErrPLCConnection, Err: err}
	}
	m.log.Debug().Int("attempt", attempts).Msg("conectado al PLC")
	return conn, nil
}

// Read abre un enlace, lee un nodo y libera el enlace en todos los caminos.
func (m *LinkManager) Read(ctx context.Context, nodeID string) (any, error) {
	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" {
		return nil, domain.ErrInvalidInput
	}
	opID := uuid.NewString()
	conn, err := m.Connect(ctx)
	if err != nil {
		m.log.Error().Err(err).Str("op_id", opID).Str("node_id", nodeID).Msg("lectura PLC sin enlace")
		return nil, err
	}
	defer m.release(ctx, conn, opID)

	octx, cancel := m.opContext(ctx)
	defer cancel()
	value, err := conn.Read(octx, nodeID)
	if err != nil {
		m.log.Error().Err(err).Str("op_id", opID).Str("node_id", nodeID).Msg("fallo de lectura PLC")
		return nil, &OpError{Op: "read", NodeID: nodeID, Kind: domain.ErrPLCRead, Err: err}
	}
	m.log.Info().Str("op_id", opID).Str("node_id", nodeID).Interface("value", value).Msg("lectura PLC")
	return value, nil
}

// Write abre un enlace, escribe un valor y libera el enlace. El fallo nunca se silencia.
func (m *LinkManager) Write(ctx context.Context, nodeID string, value any) error {
	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" || value == nil {
		return domain.ErrInvalidInput
	}
	opID := uuid.NewString()
	conn, err := m.Connect(ctx)
	if err != nil {
		m.logWrite(opID, nodeID, value, err)
		return err
	}
	defer m.release(ctx, conn, opID)

	octx, cancel := m.opContext(ctx)
	defer cancel()
	if err := conn.Write(octx, nodeID, value); err != nil {
		m.logWrite(opID, nodeID, value, err)
		return &OpError{Op: "write", NodeID: nodeID, Value: value, Kind: domain.ErrPLCWrite, Err: err}
	}
	m.logWrite(opID, nodeID, value, nil)
	return nil
}

// WriteTrafficLight escribe el estado del semáforo del armario en su nodo derivado.
func (m *LinkManager) WriteTrafficLight(ctx context.Context, cabinetID, status string) error {
	cabinetID = strings.TrimSpace(cabinetID)
	if cabinetID == "" {
		return domain.ErrInvalidInput
	}
	return m.Write(ctx, tags.TrafficLightNode(m.ns, cabinetID), status)
}

// Status realiza un ciclo conectar/desconectar. No toca ningún nodo.
func (m *LinkManager) Status(ctx context.Context) Health {
	conn, err := m.Connect(ctx)
	if err != nil {
		return Health{Status: StatusDisconnected, Error: err.Error()}
	}
	m.release(ctx, conn, "")
	return Health{Status: StatusConnected}
}

func (m *LinkManager) logWrite(opID, nodeID string, value any, err error) {
	if err != nil {
		m.log.Error().Err(err).
			Str("op_id", opID).
			Str("node_id", nodeID).
			Interface("value", value).
			Str("status", "Failed").
			Msg("escritura PLC")
		return
	}
	m.log.Info().
		Str("op_id", opID).
		Str("node_id", nodeID).
		Interface("value", value).
		Str("status", "Success").
		Msg("escritura PLC")
}

func (m *LinkManager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return context.WithCancel(ctx)
}

// release cierra el enlace aunque el contexto del caller ya esté cancelado.
func (m *LinkManager) release(ctx context.Context, conn Conn, opID string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := conn.Close(cctx); err != nil {
		m.log.Warn().Err(err).Str("op_id", opID).Msg("cerrar enlace PLC")
	}
}
