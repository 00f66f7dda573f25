package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/application/backup"
	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/internal/application/plc"
	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/application/usecase"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/memstore"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/opcua"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/almacen-bridge/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/almacen-bridge/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "almacen-bridge-test"
	testExpMin    = 60
	adminPassword = "s3cret-admin"
)

// ──────────────────────────────────────────────────────────────────────────────
// PLC falso
// ──────────────────────────────────────────────────────────────────────────────

type fakeConn struct {
	mu     sync.Mutex
	values map[string]any
}

func (c *fakeConn) Read(_ context.Context, nodeID string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[nodeID]
	if !ok {
		return nil, errors.New("BadNodeIdUnknown")
	}
	return v, nil
}

func (c *fakeConn) Write(_ context.Context, nodeID string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[nodeID] = value
	return nil
}

func (c *fakeConn) Close(context.Context) error { return nil }

func (c *fakeConn) value(nodeID string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[nodeID]
}

type fakeDialer struct {
	mu          sync.Mutex
	unreachable bool
	calls       int
	conn        *fakeConn
}

func (d *fakeDialer) Dial(context.Context) (plc.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.unreachable {
		return nil, errors.New("dial tcp 10.0.0.9:4840: connect: connection refused")
	}
	return d.conn, nil
}

func (d *fakeDialer) attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// ──────────────────────────────────────────────────────────────────────────────
// Entorno completo sobre memstore
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app        *fiber.App
	store      *memstore.Store
	image      *processimage.Image
	dialer     *fakeDialer
	backupDir  string
	adminID    int64
	operatorID int64
	productID  int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()
	store := memstore.New()

	userUC := usecase.NewUserUseCase(store.Users())
	admin, err := userUC.Create(ctx, dto.CreateUserRequest{
		Username: "admin", Password: adminPassword, RFIDTag: "admin-tag", Roles: []string{entity.RoleAdmin},
	})
	require.NoError(t, err)
	operator, err := userUC.Create(ctx, dto.CreateUserRequest{
		Username: "operador", Password: "operador", RFIDTag: "validtag",
	})
	require.NoError(t, err)

	p := &entity.Product{Name: "Tornillo M6", Barcode: "770001", RFIDTag: "prod-1", Quantity: 10}
	require.NoError(t, store.Products().Create(ctx, p))

	dialer := &fakeDialer{conn: &fakeConn{values: map[string]any{"ns=2;s=Counter": int32(42)}}}
	link := plc.NewLinkManager(dialer, plc.Config{
		Retries:    3,
		RetryDelay: time.Second,
		Namespace:  2,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}, log)
	image := processimage.New(log)

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log)
	engine := inventory.NewEngine(
		memstore.NewTxRunner(store), store.Products(), store.Transactions(), store.Cabinets(), authUC, log,
		inventory.WithRenderer(pdf.NewMovementReport("")),
	)
	backupDir := t.TempDir()

	app := fiber.New()
	apphttp.Middleware(app, log)
	apphttp.Router(app, apphttp.RouterDeps{
		AppName: "almacen-bridge-test",
		Image:   image,
		Link:    link,
		NodeSet: func() ([]byte, error) {
			return opcua.SnapshotNodeSet("urn:almacen-bridge:test", image.Snapshot())
		},
		Engine:     engine,
		AuthUC:     authUC,
		UserUC:     userUC,
		ProductUC:  usecase.NewProductUseCase(store.Products(), store.Categories()),
		CategoryUC: usecase.NewCategoryUseCase(store.Categories()),
		CabinetUC:  usecase.NewCabinetUseCase(store.Cabinets(), store.Categories()),
		Backups:    backup.NewService(store, backup.Config{Dir: backupDir, Keep: 5}, log),
		Migrator:   store,
		JWTSecret:  testJWTSecret,
		Log:        log,
	})

	return &testEnv{
		app:        app,
		store:      store,
		image:      image,
		dialer:     dialer,
		backupDir:  backupDir,
		adminID:    admin.ID,
		operatorID: operator.ID,
		productID:  p.ID,
	}
}

func tokenFor(t *testing.T, userID int64, username, role string) string {
	t.Helper()
	tok, _, err := pkgjwt.Generate(testJWTSecret, strconv.FormatInt(userID, 10), username, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) adminToken(t *testing.T) string {
	return tokenFor(t, e.adminID, "admin", entity.RoleAdmin)
}

func (e *testEnv) operatorToken(t *testing.T) string {
	return tokenFor(t, e.operatorID, "operador", entity.RoleOperator)
}

// do lanza la petición; body puede ser nil, string (JSON literal) o cualquier valor serializable.
func (e *testEnv) do(t *testing.T, method, path string, body any, authHeader string) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) quantity(t *testing.T) int64 {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), e.productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (e *testEnv) transactions(t *testing.T) []*entity.Transaction {
	t.Helper()
	rows, err := e.store.Transactions().List(context.Background(), repository.TransactionFilter{})
	require.NoError(t, err)
	return rows
}
