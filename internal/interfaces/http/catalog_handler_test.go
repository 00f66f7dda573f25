package http_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
)

func TestCatalogo_EscriturasSoloAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"name": "Tornillería"}

	resp := env.do(t, http.MethodPost, "/categories", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/categories", body, env.operatorToken(t))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/categories", body, env.adminToken(t))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// lectura permitida para cualquier sesión
	resp = env.do(t, http.MethodGet, "/categories", nil, env.operatorToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.CategoryResponse](t, resp), 1)
}

func TestCatalogo_CategoriaDuplicada_409(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"name": "Herramientas"}

	resp := env.do(t, http.MethodPost, "/categories", body, env.adminToken(t))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/categories", body, env.adminToken(t))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCatalogo_ArmarioEstantesYCategorias(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	resp := env.do(t, http.MethodPost, "/cabinets", map[string]any{"name": "A1"}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cab := decode[dto.CabinetResponse](t, resp)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/cabinets/%d/shelves", cab.ID), map[string]any{"name": "S1"}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	shelf := decode[dto.ShelfResponse](t, resp)
	assert.Equal(t, cab.ID, shelf.CabinetID)

	var catIDs []int64
	for _, name := range []string{"Tornillos", "Tuercas"} {
		resp = env.do(t, http.MethodPost, "/categories", map[string]any{"name": name}, admin)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		catIDs = append(catIDs, decode[dto.CategoryResponse](t, resp).ID)
	}

	path := fmt.Sprintf("/shelves/%d/categories", shelf.ID)
	resp = env.do(t, http.MethodPost, path, map[string]any{"category_id": catIDs[0]}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// estante de categoría única
	resp = env.do(t, http.MethodPost, path, map[string]any{"category_id": catIDs[1]}, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/cabinets/%d/shelves", cab.ID), nil, env.operatorToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	shelves := decode[[]dto.ShelfResponse](t, resp)
	require.Len(t, shelves, 1)
	assert.Equal(t, []int64{catIDs[0]}, shelves[0].CategoryIDs)
}

func TestCatalogo_EstanteEnArmarioInexistente_404(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/cabinets/77/shelves", map[string]any{"name": "S1"}, env.adminToken(t))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductos_CrearConsultarListar(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/products", map[string]any{
		"name": "Arandela", "barcode": "770002", "rfid_tag": "prod-2",
	}, env.adminToken(t))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	assert.Equal(t, int64(0), p.Quantity, "el stock inicial siempre es 0")

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/products/%d", p.ID), nil, env.operatorToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Arandela", decode[dto.ProductResponse](t, resp).Name)

	resp = env.do(t, http.MethodGet, "/products?limit=500", nil, env.operatorToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ProductListResponse](t, resp)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 100, list.Page.Limit)

	resp = env.do(t, http.MethodGet, "/products/999", nil, env.operatorToken(t))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductos_RFIDDuplicado_409(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/products", map[string]any{
		"name": "Otro", "barcode": "770099", "rfid_tag": "prod-1",
	}, env.adminToken(t))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUsuarios_AltaPorAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/users", dto.CreateUserRequest{
		Username: "nuevo", Password: "clave", RFIDTag: "tag-nuevo",
	}, env.adminToken(t))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	u := decode[dto.UserResponse](t, resp)
	assert.Equal(t, []string{"operator"}, u.Roles)

	resp = env.do(t, http.MethodPost, "/rfid/auth", map[string]any{"rfid_tag": "tag-nuevo"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/users", nil, env.operatorToken(t))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
