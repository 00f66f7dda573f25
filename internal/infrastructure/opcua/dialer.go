// Package opcua adapta github.com/gopcua/opcua a los puertos plc.Dialer/plc.Conn.
package opcua

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/jhoicas/almacen-bridge/internal/application/plc"
)

var _ plc.Dialer = (*Dialer)(nil)

// Dialer abre una sesión OPC UA sin seguridad contra el endpoint configurado.
// Cada Dial crea un cliente nuevo: el LinkManager cierra el enlace tras cada operación.
type Dialer struct {
	endpoint string
	opts     []opcua.Option
}

// NewDialer construye el dialer. dialTimeout limita el handshake; requestTimeout cada servicio.
func NewDialer(endpoint string, dialTimeout, requestTimeout time.Duration) *Dialer {
	return &Dialer{
		endpoint: endpoint,
		opts: []opcua.Option{
			opcua.SecurityMode(ua.MessageSecurityModeNone),
			opcua.SecurityPolicy("None"),
			opcua.DialTimeout(dialTimeout),
			opcua.RequestTimeout(requestTimeout),
			opcua.AutoReconnect(false),
		},
	}
}

// Dial conecta. ctx debe ser el de la operación: el cliente lo usa para su monitor interno.
func (d *Dialer) Dial(ctx context.Context) (plc.Conn, error) {
	c, err := opcua.NewClient(d.endpoint, d.opts...)
	if err != nil {
		return nil, fmt.Errorf("opcua: cliente %s: %w", d.endpoint, err)
	}
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("opcua: connect %s: %w", d.endpoint, err)
	}
	return &conn{c: c}, nil
}

type conn struct {
	c *opcua.Client
}

func (c *conn) Read(ctx context.Context, nodeID string) (any, error) {
	id, err := ua.ParseNodeID(nodeID)
	if err != nil {
		return nil, fmt.Errorf("opcua: node id %q: %w", nodeID, err)
	}
	resp, err := c.c.Read(ctx, &ua.ReadRequest{
		NodesToRead:        []*ua.ReadValueID{{NodeID: id, AttributeID: ua.AttributeIDValue}},
		TimestampsToReturn: ua.TimestampsToReturnBoth,
	})
	if err != nil {
		return nil, fmt.Errorf("opcua: read %s: %w", nodeID, err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("opcua: read %s: respuesta vacía", nodeID)
	}
	res := resp.Results[0]
	if res.Status != ua.StatusOK {
		return nil, fmt.Errorf("opcua: read %s: %w", nodeID, res.Status)
	}
	if res.Value == nil {
		return nil, nil
	}
	return res.Value.Value(), nil
}

func (c *conn) Write(ctx context.Context, nodeID string, value any) error {
	id, err := ua.ParseNodeID(nodeID)
	if err != nil {
		return fmt.Errorf("opcua: node id %q: %w", nodeID, err)
	}
	v, err := ua.NewVariant(wireValue(value))
	if err != nil {
		return fmt.Errorf("opcua: valor %v (%T): %w", value, value, err)
	}
	resp, err := c.c.Write(ctx, &ua.WriteRequest{
		NodesToWrite: []*ua.WriteValue{{
			NodeID:      id,
			AttributeID: ua.AttributeIDValue,
			Value: &ua.DataValue{
				EncodingMask: ua.DataValueValue,
				Value:        v,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("opcua: write %s: %w", nodeID, err)
	}
	if len(resp.Results) == 0 {
		return fmt.Errorf("opcua: write %s: respuesta vacía", nodeID)
	}
	if status := resp.Results[0]; status != ua.StatusOK {
		return fmt.Errorf("opcua: write %s: %w", nodeID, status)
	}
	return nil
}

func (c *conn) Close(ctx context.Context) error {
	return c.c.Close(ctx)
}

// wireValue adapta valores decodificados de JSON a tipos que acepta ua.NewVariant.
func wireValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case int:
		return int64(x)
	case float64:
		if x == float64(int64(x)) {
			return int64(x)
		}
		return x
	case string:
		return x
	case nil:
		return ""
	default:
		return v
	}
}
