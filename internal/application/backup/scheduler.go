package backup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/pkg/jobs"
)

// Scheduler dispara Service.Now cada intervalo hasta que ctx se cancela.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	log      zerolog.Logger
}

// NewScheduler construye el job periódico.
func NewScheduler(svc *Service, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{svc: svc, interval: interval, log: log.With().Str("job", "backup").Logger()}
}

// Run bloquea hasta la cancelación. Un intervalo <= 0 deshabilita el job.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("copias programadas deshabilitadas")
		return
	}
	s.log.Info().Dur("interval", s.interval).Msg("copias programadas iniciadas")
	jobs.Every(ctx, s.interval, s.log, func(ctx context.Context) {
		// el error ya quedó registrado por el servicio
		_, _ = s.svc.Now(ctx)
	})
	s.log.Info().Msg("copias programadas detenidas")
}
