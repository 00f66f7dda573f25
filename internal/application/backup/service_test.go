package backup

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDumper struct {
	tables map[string]string
	order  []string
	err    error
}

func (d *fakeDumper) Dump(_ context.Context, open func(string) (io.Writer, error)) error {
	for _, name := range d.order {
		w, err := open(name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, d.tables[name]); err != nil {
			return err
		}
	}
	return d.err
}

func newDumper() *fakeDumper {
	return &fakeDumper{
		order: []string{"products", "transactions"},
		tables: map[string]string{
			"products":     "id,name,quantity\n1,Tornillo,10\n",
			"transactions": "id,type\n",
		},
	}
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestNow_GeneraZipConUnCSVPorTabla(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(newDumper(), Config{Dir: dir}, zerolog.Nop())
	svc.clock = fixedClock(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC))

	res, err := svc.Now(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_20240305140709.zip"), res.Path)
	assert.Equal(t, []string{"products", "transactions"}, res.Tables)
	assert.Greater(t, res.SizeBytes, int64(0))

	zr, err := zip.OpenReader(res.Path)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, "products.csv", zr.File[0].Name)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "id,name,quantity\n1,Tornillo,10\n", string(body))
}

func TestNow_MismoSegundoNoSobrescribe(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(newDumper(), Config{Dir: dir}, zerolog.Nop())
	svc.clock = fixedClock(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC))

	a, err := svc.Now(context.Background())
	require.NoError(t, err)
	b, err := svc.Now(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, filepath.Join(dir, "backup_20240305140709_2.zip"), b.Path)
}

func TestNow_ErrorDelVolcadoNoDejaArchivos(t *testing.T) {
	dir := t.TempDir()
	d := newDumper()
	d.err = errors.New("disco lleno")
	svc := NewService(d, Config{Dir: dir}, zerolog.Nop())

	_, err := svc.Now(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "disco lleno")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNow_PurgaCopiasAntiguas(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(newDumper(), Config{Dir: dir, Keep: 2}, zerolog.Nop())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		svc.clock = fixedClock(base.Add(time.Duration(i) * time.Hour))
		_, err := svc.Now(context.Background())
		require.NoError(t, err)
	}

	names, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"backup_20240101020000.zip", "backup_20240101030000.zip"}, names)
}

func TestList_DirectorioInexistente(t *testing.T) {
	svc := NewService(newDumper(), Config{Dir: filepath.Join(t.TempDir(), "nada")}, zerolog.Nop())
	names, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestScheduler_EjecutaYSeDetiene(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(newDumper(), Config{Dir: dir}, zerolog.Nop())
	sched := NewScheduler(svc, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		names, _ := svc.List()
		return len(names) > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el scheduler no se detuvo al cancelar el contexto")
	}
}

func TestScheduler_IntervaloCeroDeshabilitado(t *testing.T) {
	svc := NewService(newDumper(), Config{Dir: t.TempDir()}, zerolog.Nop())
	done := make(chan struct{})
	go func() {
		NewScheduler(svc, 0, zerolog.Nop()).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run con intervalo 0 debe retornar de inmediato")
	}
}
