// Package processimage mantiene en memoria la imagen de proceso (contador de artículos, semáforo,
// comando y estado HMI) para lectura/escritura sin viaje al PLC.
package processimage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

// Value valor publicado de un punto.
type Value struct {
	Tag       tags.Tag  `json:"tag"`
	Value     any       `json:"value"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Mirror almacén externo donde se replica la imagen (p. ej. Redis) para sobrevivir reinicios.
type Mirror interface {
	Save(ctx context.Context, tag tags.Tag, value any) error
	Load(ctx context.Context) (map[tags.Tag]any, error)
}

type point struct {
	def       tags.Definition
	value     any
	version   uint64
	pushed    uint64
	updatedAt time.Time
}

// Image autoridad en memoria de los valores de los puntos. Cada punto se reemplaza de forma atómica.
type Image struct {
	mu     sync.RWMutex
	points map[tags.Tag]*point
	// mirrorMu serializa las escrituras al espejo; mirrored guarda la última versión replicada por punto.
	mirrorMu sync.Mutex
	mirrored map[tags.Tag]uint64
	mirror   Mirror
	log      zerolog.Logger
	now      func() time.Time
}

// Option configura la imagen.
type Option func(*Image)

// WithMirror replica cada cambio aceptado en m.
func WithMirror(m Mirror) Option {
	return func(im *Image) { im.mirror = m }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(im *Image) { im.now = now }
}

// New crea la imagen con los valores iniciales del registro de tags.
func New(log zerolog.Logger, opts ...Option) *Image {
	im := &Image{
		points:   make(map[tags.Tag]*point),
		mirrored: make(map[tags.Tag]uint64),
		log:      log.With().Str("component", "process_image").Logger(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(im)
	}
	now := im.now()
	for _, def := range tags.Definitions() {
		im.points[def.Tag] = &point{def: def, value: def.Initial, updatedAt: now}
	}
	return im
}

// Get devuelve el valor actual de un punto.
func (im *Image) Get(tag tags.Tag) (Value, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	p, ok := im.points[tag]
	if !ok {
		return Value{}, domain.ErrNotFound
	}
	return p.snapshot(), nil
}

// Set valida y reemplaza el valor de un punto. Un valor inválido deja el punto intacto.
func (im *Image) Set(ctx context.Context, tag tags.Tag, raw any) error {
	def, ok := tags.Lookup(tag)
	if !ok {
		return domain.ErrNotFound
	}
	v, err := normalize(def, raw)
	if err != nil {
		return err
	}

	im.mu.Lock()
	p := im.points[tag]
	p.value = v
	p.version++
	p.updatedAt = im.now()
	version := p.version
	im.mu.Unlock()

	im.replicate(ctx, tag, v, version)

	im.log.Info().Str("tag", string(tag)).Interface("value", v).Uint64("version", version).Msg("punto actualizado")
	return nil
}

// ApplyRemote aplica un valor escrito del lado del controlador. No marca el punto como pendiente
// de envío y se ignora si hay cambios locales sin enviar. Devuelve true si el valor cambió.
func (im *Image) ApplyRemote(ctx context.Context, tag tags.Tag, raw any) (bool, error) {
	def, ok := tags.Lookup(tag)
	if !ok {
		return false, domain.ErrNotFound
	}
	v, err := normalizeRemote(def, raw)
	if err != nil {
		return false, err
	}

	im.mu.Lock()
	p := im.points[tag]
	if p.version > p.pushed || p.value == v {
		im.mu.Unlock()
		return false, nil
	}
	p.value = v
	p.version++
	p.pushed = p.version
	p.updatedAt = im.now()
	version := p.version
	im.mu.Unlock()

	im.replicate(ctx, tag, v, version)
	return true, nil
}

// Snapshot todos los puntos en el orden del registro.
func (im *Image) Snapshot() []Value {
	im.mu.RLock()
	defer im.mu.RUnlock()
	out := make([]Value, 0, len(im.points))
	for _, def := range tags.Definitions() {
		out = append(out, im.points[def.Tag].snapshot())
	}
	return out
}

// Dirty puntos con cambios locales aún no enviados al PLC.
func (im *Image) Dirty() []Value {
	im.mu.RLock()
	defer im.mu.RUnlock()
	var out []Value
	for _, def := range tags.Definitions() {
		p := im.points[def.Tag]
		if p.version > p.pushed {
			out = append(out, p.snapshot())
		}
	}
	return out
}

// MarkPushed registra que la versión indicada ya está en el PLC.
func (im *Image) MarkPushed(tag tags.Tag, version uint64) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if p, ok := im.points[tag]; ok && version > p.pushed {
		p.pushed = version
	}
}

// Restore recupera los valores replicados en el Mirror. Los valores inválidos se descartan.
func (im *Image) Restore(ctx context.Context) error {
	if im.mirror == nil {
		return nil
	}
	values, err := im.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore process image: %w", err)
	}
	for _, def := range tags.Definitions() {
		raw, ok := values[def.Tag]
		if !ok {
			continue
		}
		v, err := normalize(def, raw)
		if err != nil {
			im.log.Warn().Err(err).Str("tag", string(def.Tag)).Msg("valor replicado descartado")
			continue
		}
		im.mu.Lock()
		p := im.points[def.Tag]
		p.value = v
		p.version++
		p.pushed = p.version
		p.updatedAt = im.now()
		im.mu.Unlock()
	}
	return nil
}

// ItemCount contador de artículos.
func (im *Image) ItemCount() int64 {
	v, _ := im.Get(tags.ItemCount)
	n, _ := v.Value.(int64)
	return n
}

// SetItemCount fija el contador (≥0).
func (im *Image) SetItemCount(ctx context.Context, n int64) error {
	return im.Set(ctx, tags.ItemCount, n)
}

// TrafficLight estado del semáforo.
func (im *Image) TrafficLight() string { return im.stringValue(tags.TrafficLightStatus) }

// SetTrafficLight fija el estado del semáforo (RED, YELLOW, GREEN, OFF).
func (im *Image) SetTrafficLight(ctx context.Context, status string) error {
	return im.Set(ctx, tags.TrafficLightStatus, status)
}

// HMICommand último comando HMI.
func (im *Image) HMICommand() string { return im.stringValue(tags.HMICommand) }

// SetHMICommand fija el comando HMI.
func (im *Image) SetHMICommand(ctx context.Context, cmd string) error {
	return im.Set(ctx, tags.HMICommand, cmd)
}

// HMIStatus estado reportado por la HMI.
func (im *Image) HMIStatus() string { return im.stringValue(tags.HMIStatus) }

// SetHMIStatus fija el estado HMI (texto libre).
func (im *Image) SetHMIStatus(ctx context.Context, status string) error {
	return im.Set(ctx, tags.HMIStatus, status)
}

func (im *Image) stringValue(tag tags.Tag) string {
	v, _ := im.Get(tag)
	s, _ := v.Value.(string)
	return s
}

// replicate guarda v en el espejo salvo que ya se haya replicado una versión posterior del punto,
// así el espejo no queda con un valor más viejo que la memoria.
func (im *Image) replicate(ctx context.Context, tag tags.Tag, v any, version uint64) {
	if im.mirror == nil {
		return
	}
	im.mirrorMu.Lock()
	defer im.mirrorMu.Unlock()
	if version <= im.mirrored[tag] {
		return
	}
	im.mirrored[tag] = version
	if err := im.mirror.Save(ctx, tag, v); err != nil {
		im.log.Warn().Err(err).Str("tag", string(tag)).Msg("replicar punto")
	}
}

func (p *point) snapshot() Value {
	return Value{Tag: p.def.Tag, Value: p.value, Version: p.version, UpdatedAt: p.updatedAt}
}

// normalizeRemote como normalize, pero acepta el valor inicial de un enum: es lo que
// contiene el nodo del controlador mientras nadie lo escribe.
func normalizeRemote(def tags.Definition, raw any) (any, error) {
	if s, ok := raw.(string); ok && def.Kind == tags.KindEnum && s == def.Initial {
		return s, nil
	}
	return normalize(def, raw)
}

// normalize valida el valor según el tipo fijo del punto.
func normalize(def tags.Definition, raw any) (any, error) {
	switch def.Kind {
	case tags.KindInteger:
		n, ok := toInt64(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, def.Tag)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %s must be >= 0", domain.ErrInvalidInput, def.Tag)
		}
		return n, nil
	case tags.KindEnum:
		s, ok := raw.(string)
		if !ok || !def.Allows(s) {
			return nil, fmt.Errorf("%w: %v is not a valid %s", domain.ErrInvalidInput, raw, def.Tag)
		}
		return s, nil
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, def.Tag)
		}
		return s, nil
	}
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
