// Package redis replica la imagen de proceso en un hash de Redis para restaurarla tras un reinicio.
package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

var _ processimage.Mirror = (*Mirror)(nil)

// DefaultKey hash donde se guarda un campo por tag.
const DefaultKey = "almacen:process-image"

// Mirror implementa processimage.Mirror sobre go-redis.
type Mirror struct {
	rdb goredis.UniversalClient
	key string
}

// Connect crea el cliente y verifica la conexión.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}

// NewMirror construye el espejo; key vacío usa DefaultKey.
func NewMirror(rdb goredis.UniversalClient, key string) *Mirror {
	if key == "" {
		key = DefaultKey
	}
	return &Mirror{rdb: rdb, key: key}
}

// Save guarda el valor como JSON en el campo del tag.
func (m *Mirror) Save(ctx context.Context, tag tags.Tag, value any) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	if err := m.rdb.HSet(ctx, m.key, string(tag), data).Err(); err != nil {
		return fmt.Errorf("redis: hset %s: %w", tag, err)
	}
	return nil
}

// Load devuelve los valores guardados. Los enteros llegan como json.Number; la imagen los valida.
func (m *Mirror) Load(ctx context.Context) (map[tags.Tag]any, error) {
	raw, err := m.rdb.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: hgetall: %w", err)
	}
	out := make(map[tags.Tag]any, len(raw))
	for field, data := range raw {
		v, err := decodeValue(data)
		if err != nil {
			return nil, fmt.Errorf("redis: campo %s: %w", field, err)
		}
		out[tags.Tag(field)] = v
	}
	return out, nil
}

func encodeValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("redis: marshal: %w", err)
	}
	return string(data), nil
}

func decodeValue(data string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
