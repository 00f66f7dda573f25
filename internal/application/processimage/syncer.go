package processimage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
	"github.com/jhoicas/almacen-bridge/pkg/jobs"
)

// Link subconjunto del gestor de enlace PLC que usa el sincronizador.
type Link interface {
	Read(ctx context.Context, nodeID string) (any, error)
	Write(ctx context.Context, nodeID string, value any) error
	Namespace() int
}

// Syncer empuja al PLC los puntos con cambios locales y trae los puntos que escribe el controlador.
type Syncer struct {
	image    *Image
	link     Link
	interval time.Duration
	pull     []tags.Tag
	log      zerolog.Logger
}

// NewSyncer construye el job. interval <= 0 lo deshabilita.
func NewSyncer(image *Image, link Link, interval time.Duration, log zerolog.Logger) *Syncer {
	return &Syncer{
		image:    image,
		link:     link,
		interval: interval,
		pull:     []tags.Tag{tags.ItemCount, tags.TrafficLightStatus, tags.HMICommand, tags.HMIStatus},
		log:      log.With().Str("component", "process_image_sync").Logger(),
	}
}

// Run ejecuta SyncOnce cada intervalo hasta que ctx se cancele.
func (s *Syncer) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("sincronización con PLC deshabilitada")
		return
	}
	s.log.Info().Dur("interval", s.interval).Msg("sincronización con PLC iniciada")
	jobs.Every(ctx, s.interval, s.log, func(ctx context.Context) {
		if err := s.SyncOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("ciclo de sincronización incompleto")
		}
	})
	s.log.Info().Msg("sincronización con PLC detenida")
}

// SyncOnce un ciclo: push de pendientes y pull de puntos del controlador.
// Si no hay enlace se aborta el ciclo para no repetir la política de reintentos por cada punto.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	ns := s.link.Namespace()
	var errs []error
	for _, v := range s.image.Dirty() {
		if err := s.link.Write(ctx, tags.NodeID(ns, v.Tag), v.Value); err != nil {
			errs = append(errs, err)
			if errors.Is(err, domain.ErrPLCConnection) {
				return errors.Join(errs...)
			}
			continue
		}
		s.image.MarkPushed(v.Tag, v.Version)
	}
	for _, tag := range s.pull {
		raw, err := s.link.Read(ctx, tags.NodeID(ns, tag))
		if err != nil {
			errs = append(errs, err)
			if errors.Is(err, domain.ErrPLCConnection) {
				break
			}
			continue
		}
		changed, err := s.image.ApplyRemote(ctx, tag, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if changed {
			s.log.Info().Str("tag", string(tag)).Interface("value", raw).Msg("valor recibido del PLC")
		}
	}
	return errors.Join(errs...)
}
