package backup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	filePrefix = "backup_"
	fileExt    = ".zip"
	timeLayout = "20060102150405"
)

// Dumper vuelca cada tabla del almacén como CSV. open devuelve el destino de una tabla;
// la implementación debe leer desde una instantánea consistente y no modificar nada.
type Dumper interface {
	Dump(ctx context.Context, open func(table string) (io.Writer, error)) error
}

// Config destino y retención de las copias.
type Config struct {
	Dir  string
	Keep int // 0 conserva todas
}

// Result describe una copia generada.
type Result struct {
	Path      string    `json:"path"`
	Tables    []string  `json:"tables"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Service genera copias completas bajo demanda o desde el Scheduler. Las ejecuciones se serializan.
type Service struct {
	dumper Dumper
	cfg    Config
	log    zerolog.Logger
	clock  func() time.Time

	mu sync.Mutex
}

// NewService construye el servicio de copias.
func NewService(dumper Dumper, cfg Config, log zerolog.Logger) *Service {
	if cfg.Dir == "" {
		cfg.Dir = "backups"
	}
	return &Service{
		dumper: dumper,
		cfg:    cfg,
		log:    log.With().Str("component", "backup").Logger(),
		clock:  time.Now,
	}
}

// Now escribe BACKUP_DIR/backup_YYYYMMDDHHMMSS.zip con un CSV por tabla.
// El archivo solo aparece con su nombre final cuando el volcado terminó bien.
func (s *Service) Now(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: crear directorio: %w", err)
	}
	created := s.clock()
	final := s.uniquePath(created)
	tmp := final + ".tmp"

	res, err := s.write(ctx, tmp)
	if err != nil {
		_ = os.Remove(tmp)
		s.log.Error().Err(err).Msg("copia fallida")
		return nil, err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("backup: renombrar: %w", err)
	}
	res.Path = final
	res.CreatedAt = created

	s.log.Info().Str("path", final).Int64("size_bytes", res.SizeBytes).Strs("tables", res.Tables).Msg("copia generada")

	if err := s.prune(); err != nil {
		s.log.Warn().Err(err).Msg("no se pudieron purgar copias antiguas")
	}
	return res, nil
}

func (s *Service) uniquePath(t time.Time) string {
	base := filepath.Join(s.cfg.Dir, filePrefix+t.Format(timeLayout))
	path := base + fileExt
	for i := 2; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = fmt.Sprintf("%s_%d%s", base, i, fileExt)
	}
}

func (s *Service) write(ctx context.Context, path string) (*Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("backup: crear archivo: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	res := &Result{}
	err = s.dumper.Dump(ctx, func(table string) (io.Writer, error) {
		w, err := zw.Create(table + ".csv")
		if err != nil {
			return nil, fmt.Errorf("zip: crear entrada %s: %w", table, err)
		}
		res.Tables = append(res.Tables, table)
		return w, nil
	})
	if err != nil {
		return nil, fmt.Errorf("backup: volcado: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	res.SizeBytes = info.Size()
	return res, nil
}

// List devuelve las copias existentes, de la más antigua a la más reciente.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(n, filePrefix) && strings.HasSuffix(n, fileExt) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Service) prune() error {
	if s.cfg.Keep <= 0 {
		return nil
	}
	names, err := s.List()
	if err != nil {
		return err
	}
	var errs []error
	for len(names) > s.cfg.Keep {
		if err := os.Remove(filepath.Join(s.cfg.Dir, names[0])); err != nil {
			errs = append(errs, err)
		}
		names = names[1:]
	}
	return errors.Join(errs...)
}
