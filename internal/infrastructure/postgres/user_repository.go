package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// roles se agregan con array_agg; COALESCE evita NULL cuando el usuario no tiene roles.
const selectUser = `
	SELECT u.id, u.username, u.password, u.rfid_tag, u.created_at,
	       COALESCE(array_agg(r.role_name ORDER BY r.role_name) FILTER (WHERE r.role_name IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

// Create persiste un nuevo usuario (password ya hasheado).
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO users (username, password, rfid_tag) VALUES ($1, $2, $3) RETURNING id, created_at`,
		user.Username, user.PasswordHash, nullIfEmpty(user.RFIDTag),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return mapWriteError("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, selectUser+` WHERE u.id = $1 GROUP BY u.id`, id)
}

// GetByUsername obtiene un usuario por username (login).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, selectUser+` WHERE u.username = $1 GROUP BY u.id`, username)
}

// GetByRFID obtiene un usuario por su etiqueta RFID.
func (r *UserRepo) GetByRFID(ctx context.Context, rfidTag string) (*entity.User, error) {
	if rfidTag == "" {
		return nil, nil
	}
	return r.getOne(ctx, selectUser+` WHERE u.rfid_tag = $1 GROUP BY u.id`, rfidTag)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List lista usuarios ordenados por id.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, selectUser+` GROUP BY u.id ORDER BY u.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// AssignRole vincula un rol existente; repetirlo no tiene efecto.
func (r *UserRepo) AssignRole(ctx context.Context, userID int64, roleName string) error {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE role_name = $2
		ON CONFLICT DO NOTHING`, userID, roleName)
	if err != nil {
		return mapWriteError("assign role", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE role_name = $1)`, roleName).Scan(&exists); err != nil {
			return fmt.Errorf("check role: %w", err)
		}
		if !exists {
			return fmt.Errorf("role %q: %w", roleName, domain.ErrInvalidInput)
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u    entity.User
		rfid *string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &rfid, &u.CreatedAt, &u.Roles); err != nil {
		return nil, err
	}
	u.RFIDTag = derefString(rfid)
	return &u, nil
}
