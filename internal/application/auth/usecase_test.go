package auth_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/memstore"
	"github.com/jhoicas/almacen-bridge/pkg/jwt"
)

const secret = "test-secret"

func setup(t *testing.T) (*auth.AuthUseCase, *entity.User) {
	t.Helper()
	store := memstore.New()
	hash, err := auth.HashPassword("s3creta")
	require.NoError(t, err)
	u := &entity.User{Username: "ana", PasswordHash: hash, RFIDTag: "validtag"}
	require.NoError(t, store.Users().Create(context.Background(), u))
	require.NoError(t, store.Users().AssignRole(context.Background(), u.ID, entity.RoleAdmin))

	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 30, Issuer: "almacen"}, zerolog.Nop())
	return uc, u
}

func TestAuthenticateCredentials_EmiteSesion(t *testing.T) {
	uc, u := setup(t)

	sess, err := uc.AuthenticateCredentials(context.Background(), "ana", "s3creta")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.User.ID)
	assert.Equal(t, []string{entity.RoleAdmin}, sess.User.Roles)

	claims, err := jwt.Parse(secret, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(u.ID, 10), claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
	assert.Equal(t, "ana", claims.Username)
}

func TestAuthenticateCredentials_Rechazos(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.AuthenticateCredentials(ctx, "ana", "otra")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.AuthenticateCredentials(ctx, "nadie", "s3creta")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.AuthenticateCredentials(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthenticateRFID(t *testing.T) {
	uc, u := setup(t)
	ctx := context.Background()

	id, err := uc.AuthenticateRFID(ctx, "validtag")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = uc.AuthenticateRFID(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.AuthenticateRFID(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserExists(t *testing.T) {
	uc, u := setup(t)
	ok, err := uc.UserExists(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.UserExists(context.Background(), u.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_NoGuardaTextoPlano(t *testing.T) {
	h, err := auth.HashPassword("s3creta")
	require.NoError(t, err)
	assert.NotEqual(t, "s3creta", h)
}
