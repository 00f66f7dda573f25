package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/pkg/retry"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func TestDo_AgotaIntentos(t *testing.T) {
	s := &recordingSleeper{}
	p := retry.Policy{Attempts: 3, Delay: 2 * time.Second, Sleep: s.Sleep}
	boom := errors.New("boom")

	calls := 0
	n, err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, calls)
	// solo se espera entre intentos
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, s.waits)
}

func TestDo_ExitoEnSegundoIntento(t *testing.T) {
	s := &recordingSleeper{}
	p := retry.Policy{Attempts: 5, Delay: time.Second, Sleep: s.Sleep}

	n, err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		if attempt < 2 {
			return errors.New("todavía no")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, s.waits, 1)
}

func TestDo_Permanent(t *testing.T) {
	s := &recordingSleeper{}
	p := retry.Policy{Attempts: 5, Delay: time.Second, Sleep: s.Sleep}
	bad := errors.New("endpoint inválido")

	n, err := p.Do(context.Background(), func(context.Context, int) error {
		return retry.Permanent(bad)
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, bad)
	assert.Empty(t, s.waits)
}

func TestDo_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := retry.Policy{Attempts: 3, Delay: time.Hour}
	boom := errors.New("boom")

	start := time.Now()
	n, err := p.Do(ctx, func(context.Context, int) error { return boom })
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffExponencialYMaxWait(t *testing.T) {
	s := &recordingSleeper{}
	p := retry.Policy{Attempts: 4, Delay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second, Sleep: s.Sleep}
	_, _ = p.Do(context.Background(), func(context.Context, int) error { return errors.New("x") })

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, s.waits)
	assert.Equal(t, 6*time.Second, p.MaxWait())
	assert.Equal(t, 4*time.Second, retry.Policy{Attempts: 3, Delay: 2 * time.Second}.MaxWait())
}

func TestDo_CancelacionDuranteLaEspera(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := retry.Policy{Attempts: 5, Delay: time.Second, Sleep: func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}}
	boom := errors.New("boom")

	n, err := p.Do(ctx, func(context.Context, int) error { return boom })
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_UnSoloIntento(t *testing.T) {
	s := &recordingSleeper{}
	p := retry.Policy{Attempts: 0, Delay: time.Second, Sleep: s.Sleep}
	n, err := p.Do(context.Background(), func(context.Context, int) error { return errors.New("x") })
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, s.waits)
	assert.Zero(t, p.MaxWait())
}
