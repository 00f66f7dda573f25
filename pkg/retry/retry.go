// Package retry envuelve cenkalti/backoff con una política acotada por número de intentos
// y espera inyectable, de modo que los tests no duerman de verdad.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Sleeper espera d o hasta que ctx se cancele.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep Sleeper real basado en timer.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Policy número máximo de intentos y espera entre ellos.
// Con Multiplier > 1 la espera crece de forma exponencial hasta MaxDelay.
type Policy struct {
	Attempts   int
	Delay      time.Duration
	Multiplier float64
	MaxDelay   time.Duration
	Sleep      Sleeper
}

// Permanent marca un error que no debe reintentarse.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do ejecuta fn hasta p.Attempts veces (mínimo 1), esperando solo entre intentos.
// Devuelve el número de intentos realizados y el último error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	var (
		attempt int
		lastErr error
	)
	op := func() error {
		attempt++
		lastErr = fn(ctx, attempt)
		return lastErr
	}

	var timer backoff.Timer
	if p.Sleep != nil {
		timer = &sleepTimer{ctx: ctx, sleep: p.Sleep}
	}
	err := backoff.RetryNotifyWithTimer(op, backoff.WithContext(p.backOff(), ctx), nil, timer)
	if err == nil {
		return attempt, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) && lastErr != nil && !errors.Is(lastErr, ctxErr) {
		return attempt, errors.Join(lastErr, ctxErr)
	}
	return attempt, err
}

// backOff secuencia de esperas sin aleatoriedad, cortada tras Attempts-1 reintentos.
func (p Policy) backOff() backoff.BackOff {
	if p.Attempts <= 1 {
		return &backoff.StopBackOff{}
	}
	var b backoff.BackOff
	if p.Multiplier > 1 {
		maxDelay := p.MaxDelay
		if maxDelay <= 0 {
			maxDelay = time.Duration(math.MaxInt64)
		}
		b = backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(p.Delay),
			backoff.WithRandomizationFactor(0),
			backoff.WithMultiplier(p.Multiplier),
			backoff.WithMaxInterval(maxDelay),
			backoff.WithMaxElapsedTime(0),
		)
	} else {
		b = backoff.NewConstantBackOff(p.Delay)
	}
	return backoff.WithMaxRetries(b, uint64(p.Attempts-1))
}

// MaxWait cota superior del tiempo total de espera de la política.
func (p Policy) MaxWait() time.Duration {
	b := p.backOff()
	b.Reset()
	var total time.Duration
	for d := b.NextBackOff(); d != backoff.Stop; d = b.NextBackOff() {
		total += d
	}
	return total
}

// sleepTimer adapta un Sleeper al backoff.Timer. Start bloquea mientras dura la espera.
type sleepTimer struct {
	ctx   context.Context
	sleep Sleeper
	c     chan time.Time
}

func (t *sleepTimer) Start(d time.Duration) {
	t.c = make(chan time.Time, 1)
	if err := t.sleep(t.ctx, d); err == nil || t.ctx.Err() == nil {
		t.c <- time.Now()
	}
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time { return t.c }
