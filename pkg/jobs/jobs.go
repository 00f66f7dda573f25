// Package jobs ejecuta tareas periódicas sobre robfig/cron con intervalos arbitrarios
// (cron.Every redondea a segundos).
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// interval Schedule de periodo fijo, sin redondeo.
type interval time.Duration

func (d interval) Next(t time.Time) time.Time { return t.Add(time.Duration(d)) }

// Every ejecuta fn cada d hasta que ctx se cancele y espera a que termine la ejecución en curso.
// Una ejecución que se solapa con la anterior se descarta y un pánico en fn queda registrado
// sin detener el planificador. d <= 0 retorna de inmediato.
func Every(ctx context.Context, d time.Duration, log zerolog.Logger, fn func(ctx context.Context)) {
	if d <= 0 {
		return
	}
	l := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	c.Schedule(interval(d), cron.FuncJob(func() { fn(ctx) }))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

// cronLogger adapta zerolog a cron.Logger. Los mensajes rutinarios de cron van a debug.
type cronLogger struct{ log zerolog.Logger }

func (l cronLogger) Info(msg string, kv ...any) {
	withFields(l.log.Debug(), kv).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	withFields(l.log.Error().Err(err), kv).Msg(msg)
}

func withFields(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	return e
}
