package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/application/sales"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/memory"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/metrics"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/notify"
	apphttp "github.com/aguahielo/movimientos-api/internal/interfaces/http"
)

type apiFixture struct {
	app  *fiber.App
	hub  *notify.Hub
	done chan struct{}
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	_, err := inventory.SeedCatalog(t.Context(), store.Reader(), nil, nil)
	require.NoError(t, err)

	log := zerolog.Nop()
	observer := metrics.New()
	hub := notify.NewHub(8)
	catalog := inventory.NewCatalog(store.Reader().Storages, store.Reader().Elements, log)
	engine := inventory.NewEngine(catalog, inventory.RetryPolicy{MaxAttempts: 3, IsTransient: memory.IsTransient}, observer)
	feed := inventory.NewChangeFeed(hub, observer, log)

	done := make(chan struct{})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Movements: inventory.NewMovementUseCase(store, engine, catalog, feed, log),
		Queries:   inventory.NewQueryUseCase(store),
		Sales:     sales.NewUseCase(store, engine, catalog, feed, log),
		Hub:       hub,
		Metrics:   observer.Handler(),
		Tokens:    testSigner(t),
		AppName:   "movimientos-test",
		Heartbeat: time.Hour,
		Done:      done,
		Log:       log,
	})
	return &apiFixture{app: app, hub: hub, done: done}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestAPI_EntradaYEstado(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/entry", "bodeguero",
		map[string]any{"element_code": "canastilla", "amount": "4"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var res dto.MovementResultResponse
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Movements, 1)
	assert.Equal(t, "in", res.Movements[0].Cause)
	assert.Nil(t, res.Movements[0].StorageFromID)

	resp, body = f.call(t, http.MethodGet, "/api/inventory/state", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state dto.StateResponse
	require.NoError(t, json.Unmarshal(body, &state))
	assert.True(t, state.Changed)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "bodega", state.Items[0].StorageCode)
	assert.Equal(t, "4", state.Items[0].Quantity.String())

	resp, body = f.call(t, http.MethodGet, "/api/inventory/state?since="+jsonInt(state.Version), "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.False(t, state.Changed)
	assert.Empty(t, state.Items)
}

func TestAPI_SinStockResponde409ConDetalle(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/unpack", "bodeguero",
		map[string]any{"amount": "1"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var e struct {
		Code    string `json:"code"`
		Details struct {
			Storage   struct{ Code string } `json:"storage"`
			Element   struct{ Code string } `json:"element"`
			Available string                `json:"available"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "NOT_ENOUGH_IN_SOURCE", e.Code)
	assert.Equal(t, "terminado", e.Details.Storage.Code)
	assert.Equal(t, "paca-360", e.Details.Element.Code)
	assert.Equal(t, "0", e.Details.Available)
}

func TestAPI_ValidacionDeCuerpo(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/relocation", "bodeguero",
		map[string]any{"element_code": "bolsa-360", "storage_from": "intermedia", "storage_to": "intermedia", "amount": "1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
	assert.Contains(t, string(body), "storage_to")

	resp, _ = f.call(t, http.MethodPost, "/api/inventory/movements/damage", "bodeguero",
		map[string]any{"damage_type": "general", "element_code": "canastilla", "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "general exige storage_code")

	resp, _ = f.call(t, http.MethodGet, "/api/inventory/movements?sort=element", "vendedor", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CantidadFueraDeEscala(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodPost, "/api/inventory/movements/entry", "bodeguero",
		map[string]any{"element_code": "canastilla", "amount": "10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/relocation", "bodeguero",
		map[string]any{"element_code": "canastilla", "storage_from": "bodega", "storage_to": "trabajo", "amount": "1.00005"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "VALIDATION")

	resp, body = f.call(t, http.MethodPost, "/api/sales", "vendedor",
		map[string]any{"lines": []map[string]any{{"product_code": "paca-360", "quantity": "0.00001"}}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
}

func TestAPI_CodigoInexistenteEnLaPeticionEs404(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/entry", "bodeguero",
		map[string]any{"element_code": "canastila-typo", "amount": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "NOT_FOUND")

	resp, body = f.call(t, http.MethodPost, "/api/inventory/movements/damage", "bodeguero",
		map[string]any{"damage_type": "general", "element_code": "canastilla", "storage_code": "bodga", "amount": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))
	assert.NotContains(t, string(body), "CONFIGURATION")
}

func TestAPI_ManualSoloAdminOBodeguero(t *testing.T) {
	f := newAPI(t)
	manual := map[string]any{"storage_to_id": 1, "element_from_id": 1, "quantity_from": "2"}

	resp, _ := f.call(t, http.MethodPost, "/api/inventory/movements/manual", "vendedor", manual)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/manual", "admin", manual)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = f.call(t, http.MethodPost, "/api/inventory/movements/manual", "admin",
		map[string]any{"storage_to_id": 999, "element_from_id": 1, "quantity_from": "2"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_SinToken(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodGet, "/api/storages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_VentaYAnulacion(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodPost, "/api/inventory/movements/entry", "bodeguero",
		map[string]any{"element_code": "hielo-5kg", "storage_code": "terminado", "amount": "3"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.call(t, http.MethodPost, "/api/sales", "vendedor",
		map[string]any{"lines": []map[string]any{{"product_code": "hielo-5kg", "quantity": "2"}}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.CreateSalesResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.Len(t, created.Sales, 1)
	saleID := created.Sales[0].ID

	resp, _ = f.call(t, http.MethodPost, "/api/sales/"+saleID+"/void", "vendedor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.call(t, http.MethodPost, "/api/sales/"+saleID+"/void", "vendedor", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "ALREADY_VOIDED")

	resp, _ = f.call(t, http.MethodPost, "/api/sales", "vendedor",
		map[string]any{"lines": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.call(t, http.MethodPost, "/api/sales", "vendedor",
		map[string]any{"lines": []map[string]any{{"product_code": "botellon-nuevo", "variant_code": "tapa-dorada", "quantity": "1"}}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "CONFIGURATION")
}

func TestAPI_CatalogoSaludYMetricas(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodGet, "/api/storages", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var storages []dto.StorageResponse
	require.NoError(t, json.Unmarshal(body, &storages))
	assert.Len(t, storages, 4)

	resp, _ = f.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.call(t, http.MethodPost, "/api/inventory/movements/entry", "bodeguero",
		map[string]any{"element_code": "canastilla", "amount": "1"})
	resp, body = f.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `movimientos_movements_applied_total{cause="in"} 1`)
}

func TestAPI_EventosSSE(t *testing.T) {
	f := newAPI(t)

	token := tokenForRole(t, "bodeguero")
	go func() {
		defer close(f.done)
		for f.hub.Subscribers() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/inventory/movements/entry",
			strings.NewReader(`{"element_code":"canastilla","amount":"2"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)
		if resp, err := f.app.Test(req, -1); err == nil {
			resp.Body.Close()
		}
		// dar tiempo al stream para escribir el evento antes de cerrar
		time.Sleep(100 * time.Millisecond)
	}()

	resp, body := f.call(t, http.MethodGet, "/api/inventory/events", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "event: connected")
	assert.Contains(t, string(body), "event: state")
	assert.Contains(t, string(body), `"quantity":"2"`)
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
