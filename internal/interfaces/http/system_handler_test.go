package http_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestBackupNow_GeneraArchivo(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/backup-now", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.BackupResponse](t, resp)
	assert.Equal(t, "Manual database backup completed successfully.", out.Message)
	assert.Contains(t, out.Tables, "transactions")

	_, err := os.Stat(filepath.Join(env.backupDir, out.File))
	assert.NoError(t, err)
}

func TestReportError(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/error", map[string]any{"error_message": "banda transportadora detenida"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Error logged", decode[dto.MessageResponse](t, resp).Message)

	resp = env.do(t, http.MethodPost, "/error", map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetDatabase_SoloAdminYConservaDatos(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/reset-database", nil, env.operatorToken(t))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/reset-database", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(10), env.quantity(t))
}
