package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la cantidad y la fila de auditoría se confirman juntas o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		txRepo repository.TransactionRepository,
	) error) error
}

// ActorResolver resuelve quién ejecuta el movimiento (implementado por auth.AuthUseCase).
type ActorResolver interface {
	AuthenticateRFID(ctx context.Context, tag string) (int64, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

// MovementPublisher publica movimientos confirmados hacia otros sistemas (Kafka).
type MovementPublisher interface {
	PublishMovement(ctx context.Context, ev dto.MovementEvent) error
}

// ReportRenderer genera el documento del histórico de movimientos (PDF).
type ReportRenderer interface {
	RenderTransactions(rows []dto.TransactionResponse, generatedAt time.Time) ([]byte, error)
}
