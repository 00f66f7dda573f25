package processimage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

type fakeLink struct {
	written map[string]any
	remote  map[string]any
	err     error
	writes  int
}

func (l *fakeLink) Read(_ context.Context, nodeID string) (any, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.remote[nodeID], nil
}

func (l *fakeLink) Write(_ context.Context, nodeID string, value any) error {
	l.writes++
	if l.err != nil {
		return l.err
	}
	if l.written == nil {
		l.written = map[string]any{}
	}
	l.written[nodeID] = value
	if l.remote != nil {
		l.remote[nodeID] = value
	}
	return nil
}

// plcMemory nodos del controlador con sus valores iniciales, sobrescritos por overrides.
func plcMemory(overrides map[string]any) map[string]any {
	m := map[string]any{}
	for _, d := range tags.Definitions() {
		m[tags.NodeID(2, d.Tag)] = d.Initial
	}
	for k, v := range overrides {
		m[k] = v
	}
	return m
}

func (l *fakeLink) Namespace() int { return 2 }

func TestSyncOnce_PushYPull(t *testing.T) {
	ctx := context.Background()
	im := processimage.New(zerolog.Nop())
	require.NoError(t, im.SetItemCount(ctx, 7))
	require.NoError(t, im.SetHMICommand(ctx, "START"))

	link := &fakeLink{remote: plcMemory(map[string]any{"ns=2;s=Warehouse.HMIStatus": "RUNNING"})}
	s := processimage.NewSyncer(im, link, time.Second, zerolog.Nop())
	require.NoError(t, s.SyncOnce(ctx))

	assert.Equal(t, int64(7), link.written["ns=2;s=Warehouse.ItemCount"])
	assert.Equal(t, "START", link.written["ns=2;s=Warehouse.HMICommand"])
	assert.Empty(t, im.Dirty())
	assert.Equal(t, "RUNNING", im.HMIStatus())

	// sin cambios no se escribe nada
	link.writes = 0
	require.NoError(t, s.SyncOnce(ctx))
	assert.Zero(t, link.writes)
}

func TestSyncOnce_TraeTodosLosPuntosEscritosPorElControlador(t *testing.T) {
	ctx := context.Background()
	im := processimage.New(zerolog.Nop())
	link := &fakeLink{remote: plcMemory(map[string]any{
		"ns=2;s=Warehouse.ItemCount":          int32(12),
		"ns=2;s=Warehouse.TrafficLightStatus": "GREEN",
		"ns=2;s=Warehouse.HMICommand":         "STOP",
		"ns=2;s=Warehouse.HMIStatus":          "RUNNING",
	})}
	s := processimage.NewSyncer(im, link, time.Second, zerolog.Nop())
	require.NoError(t, s.SyncOnce(ctx))

	assert.Equal(t, int64(12), im.ItemCount())
	assert.Equal(t, "GREEN", im.TrafficLight())
	assert.Equal(t, "STOP", im.HMICommand())
	assert.Equal(t, "RUNNING", im.HMIStatus())
	assert.Zero(t, link.writes)

	// un cambio local pendiente no se pisa con el valor del controlador
	require.NoError(t, im.SetItemCount(ctx, 3))
	link.remote["ns=2;s=Warehouse.ItemCount"] = int32(40)
	require.NoError(t, s.SyncOnce(ctx))
	assert.Equal(t, int64(3), im.ItemCount())
	assert.Equal(t, int64(3), link.remote["ns=2;s=Warehouse.ItemCount"])
}

func TestSyncOnce_SinEnlaceConservaPendientes(t *testing.T) {
	ctx := context.Background()
	im := processimage.New(zerolog.Nop())
	require.NoError(t, im.SetItemCount(ctx, 1))
	require.NoError(t, im.SetTrafficLight(ctx, "RED"))

	link := &fakeLink{err: errors.Join(domain.ErrPLCConnection, errors.New("refused"))}
	s := processimage.NewSyncer(im, link, time.Second, zerolog.Nop())
	err := s.SyncOnce(ctx)
	require.ErrorIs(t, err, domain.ErrPLCConnection)
	assert.Equal(t, 1, link.writes, "se aborta tras el primer fallo de conexión")
	assert.Len(t, im.Dirty(), 2)
}

func TestRun_SeDetieneConContexto(t *testing.T) {
	im := processimage.New(zerolog.Nop())
	s := processimage.NewSyncer(im, &fakeLink{}, 5*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}

func TestRun_Deshabilitado(t *testing.T) {
	s := processimage.NewSyncer(processimage.New(zerolog.Nop()), &fakeLink{}, 0, zerolog.Nop())
	s.Run(context.Background()) // retorna de inmediato
}
