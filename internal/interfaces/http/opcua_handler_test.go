package http_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/plc"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

// ──────────────────────────────────────────────────────────────────────────────
// Imagen de proceso local
// ──────────────────────────────────────────────────────────────────────────────

func TestSetTrafficLight_EstadoInvalido_NoCambiaLaImagen(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/set-traffic-light", map[string]any{"status": "PURPLE"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Invalid status", body.Message)

	assert.Equal(t, "OFF", env.image.TrafficLight(), "la imagen no debe cambiar")
}

func TestSetTrafficLight_Valido(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/set-traffic-light", map[string]any{"traffic_light_status": "GREEN"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/opcua/get-traffic-light", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GREEN", decode[dto.TrafficLightResponse](t, resp).TrafficLightStatus)
}

func TestSetItemCount(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"entero", `{"item_count": 7}`, http.StatusOK},
		{"decimal", `{"item_count": 3.5}`, http.StatusBadRequest},
		{"texto", `{"item_count": "8"}`, http.StatusBadRequest},
		{"booleano", `{"item_count": true}`, http.StatusBadRequest},
		{"negativo", `{"item_count": -1}`, http.StatusBadRequest},
		{"ausente", `{}`, http.StatusBadRequest},
		{"json roto", `{"item_count":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/opcua/set-item-count", tc.body, "")
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == http.StatusBadRequest {
				assert.Equal(t, "Invalid item count", decode[dto.ErrorResponse](t, resp).Message)
			}
		})
	}

	resp := env.do(t, http.MethodGet, "/opcua/get-item-count", nil, "")
	assert.Equal(t, int64(7), decode[dto.ItemCountResponse](t, resp).ItemCount)
}

func TestHMICommandYStatus(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/set-hmi-command", map[string]any{"hmi_command": "SELF_DESTRUCT"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid HMI command", decode[dto.ErrorResponse](t, resp).Message)

	resp = env.do(t, http.MethodPost, "/opcua/set-hmi-command", map[string]any{"hmi_command": "START"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/opcua/get-hmi-command", nil, "")
	assert.Equal(t, "START", decode[dto.HMICommandResponse](t, resp).HMICommand)

	resp = env.do(t, http.MethodGet, "/opcua/get-hmi-status", nil, "")
	assert.Equal(t, "IDLE", decode[dto.HMIStatusResponse](t, resp).HMIStatus)
}

// ──────────────────────────────────────────────────────────────────────────────
// Enlace con el PLC
// ──────────────────────────────────────────────────────────────────────────────

func TestStatus_Conectado(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/opcua/status", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, plc.StatusConnected, decode[plc.Health](t, resp).Status)
}

func TestStatus_PLCInalcanzable(t *testing.T) {
	env := newTestEnv(t)
	env.dialer.unreachable = true

	resp := env.do(t, http.MethodGet, "/opcua/status", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decode[plc.Health](t, resp)
	assert.Equal(t, plc.StatusDisconnected, h.Status)
	assert.Contains(t, h.Error, "connection refused")
	assert.Equal(t, 3, env.dialer.attempts())
}

func TestRead_DevuelveValor(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/read", map[string]any{"node_id": "ns=2;s=Counter"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)
	assert.Equal(t, float64(42), out["value"])
}

func TestRead_NodoDesconocido_500ConTexto(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/read", map[string]any{"node_id": "ns=2;s=Nope"}, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "PLC_READ", body.Code)
	assert.Contains(t, body.Message, "BadNodeIdUnknown")
}

func TestWrite_PLCInalcanzable_500ConTexto(t *testing.T) {
	env := newTestEnv(t)
	env.dialer.unreachable = true

	resp := env.do(t, http.MethodPost, "/opcua/write", map[string]any{"node_id": "ns=2;s=Counter", "value": 5}, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "PLC_CONNECTION", body.Code)
	assert.Contains(t, body.Message, "connection refused")
}

func TestWrite_ConservaEnteros(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/write", `{"node_id": "ns=2;s=Counter", "value": 5}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Value written successfully", decode[dto.MessageResponse](t, resp).Message)
	assert.NotNil(t, env.dialer.conn.value("ns=2;s=Counter"))
}

func TestUpdate_SinValor_400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/opcua/update", map[string]any{"node_id": "ns=2;s=Counter"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid node_id or value", decode[dto.ErrorResponse](t, resp).Message)
	assert.Equal(t, 0, env.dialer.attempts(), "no debe abrir enlace con datos inválidos")
}

func TestTrafficLight_EscribeNodoDelArmario(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/traffic-light", `{"cabinet_id": 3, "status": "GREEN"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Traffic light for cabinet 3 set to GREEN", decode[dto.MessageResponse](t, resp).Message)
	assert.Equal(t, "GREEN", env.dialer.conn.value(tags.TrafficLightNode(2, "3")))
}

func TestTrafficLight_FalloDelPLC(t *testing.T) {
	env := newTestEnv(t)
	env.dialer.unreachable = true

	resp := env.do(t, http.MethodPost, "/traffic-light", `{"cabinet_id": "A", "status": "RED"}`, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestNodeSet_XML(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/opcua/nodeset", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "xml")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ns=1;s=Warehouse.TrafficLightStatus")
}
