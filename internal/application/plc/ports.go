package plc

import "context"

// Conn enlace abierto con el controlador. Una operación por enlace; Close siempre se invoca.
type Conn interface {
	Read(ctx context.Context, nodeID string) (any, error)
	Write(ctx context.Context, nodeID string, value any) error
	Close(ctx context.Context) error
}

// Dialer abre enlaces con el controlador. Es el único punto que conoce el protocolo de cable.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}
