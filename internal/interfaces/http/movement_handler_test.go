package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/infrastructure/cache"
	apphttp "github.com/jhoicas/estoque-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/estoque-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type registerCall struct {
	userID, email string
	in            dto.RegisterMovementRequest
}

type fakeRegistrar struct {
	mu    sync.Mutex
	calls []registerCall
	err   error
}

func (f *fakeRegistrar) RegisterMovementFromRequest(_ context.Context, userID, email string, in dto.RegisterMovementRequest) (*dto.MovementCreatedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, registerCall{userID: userID, email: email, in: in})
	if f.err != nil {
		return nil, f.err
	}
	return &dto.MovementCreatedResponse{
		Message:         "movimiento registrado",
		ID:              fmt.Sprintf("mov-%d", len(f.calls)),
		ProductQuantity: 7,
		Sweep:           dto.SweepResultDTO{Triggered: in.Type != "inbound"},
	}, nil
}

func (f *fakeRegistrar) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeQuerier struct {
	filter    dto.MovementFilterRequest
	productID string
}

func (f *fakeQuerier) ListMovements(_ context.Context, in dto.MovementFilterRequest) ([]dto.MovementResponse, error) {
	f.filter = in
	return []dto.MovementResponse{{ID: "m1", Type: "outbound", Quantity: 3, CreatedAt: time.Now()}}, nil
}

func (f *fakeQuerier) ListMovementsForProduct(_ context.Context, productID string) ([]dto.MovementResponse, error) {
	f.productID = productID
	return []dto.MovementResponse{}, nil
}

type fakeReporter struct{}

func (fakeReporter) GenerateReport(context.Context, dto.MovementFilterRequest) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

type movementEnv struct {
	app      *fiber.App
	register *fakeRegistrar
	query    *fakeQuerier
}

func newMovementEnv(t *testing.T) *movementEnv {
	t.Helper()
	store := cache.NewMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	env := &movementEnv{app: fiber.New(), register: &fakeRegistrar{}, query: &fakeQuerier{}}
	apphttp.Router(env.app, apphttp.RouterDeps{
		RegisterMovement: env.register,
		MovementQuery:    env.query,
		MovementReport:   fakeReporter{},
		Idempotency:      store,
		IdempotencyTTL:   time.Hour,
		JWTSecret:        testJWTSecret,
	})
	return env
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, testEmail, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *movementEnv) do(t *testing.T, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/movements
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementHandler_Register_Creado(t *testing.T) {
	env := newMovementEnv(t)
	resp := env.do(t, http.MethodPost, "/api/movements",
		`{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"outbound","quantity":3,"note":"venta"}`,
		map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.MovementCreatedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "mov-1", out.ID)
	assert.True(t, out.Sweep.Triggered, "una salida dispara la revisión")

	require.Equal(t, 1, env.register.count())
	call := env.register.calls[0]
	assert.Equal(t, testUserID, call.userID, "el actor es el usuario del token")
	assert.Equal(t, testEmail, call.email, "el destinatario es el email del token")
	require.NotNil(t, call.in.Quantity)
	assert.Equal(t, int64(3), *call.in.Quantity)
}

func TestMovementHandler_Register_AjusteACeroEsValido(t *testing.T) {
	env := newMovementEnv(t)
	resp := env.do(t, http.MethodPost, "/api/movements",
		`{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"adjustment","quantity":0}`,
		map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestMovementHandler_Register_Validacion(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"sin cantidad", `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"inbound"}`, "quantity"},
		{"cantidad negativa", `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"inbound","quantity":-1}`, "quantity"},
		{"tipo desconocido", `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"transfer","quantity":1}`, "type"},
		{"sin producto", `{"type":"inbound","quantity":1}`, "product_id"},
		{"id de producto mal formado", `{"product_id":"abc","type":"inbound","quantity":1}`, "product_id"},
		{"json inválido", `{"product_id":`, "body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newMovementEnv(t)
			resp := env.do(t, http.MethodPost, "/api/movements", tc.body,
				map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
			defer resp.Body.Close()

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			out := decodeError(t, resp)
			assert.Equal(t, "VALIDATION", out.Code)
			require.NotEmpty(t, out.Details)
			assert.Equal(t, tc.field, out.Details[0].Field)
			assert.Zero(t, env.register.count(), "no debe llegar al caso de uso")
		})
	}
}

func TestMovementHandler_Register_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"producto inexistente", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"stock insuficiente", domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"almacenamiento", fmt.Errorf("%w: insert: conexión rechazada", domain.ErrStorage), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newMovementEnv(t)
			env.register.err = tc.err
			resp := env.do(t, http.MethodPost, "/api/movements",
				`{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"outbound","quantity":1}`,
				map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			out := decodeError(t, resp)
			assert.Equal(t, tc.code, out.Code)
			assert.NotContains(t, out.Message, "conexión rechazada", "la causa interna no se expone")
		})
	}
}

func TestMovementHandler_Register_SinToken_Retorna401(t *testing.T) {
	env := newMovementEnv(t)
	resp := env.do(t, http.MethodPost, "/api/movements", `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"inbound","quantity":1}`, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, env.register.count())
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementHandler_Idempotencia_ReintentoDevuelveLaMismaRespuesta(t *testing.T) {
	env := newMovementEnv(t)
	headers := map[string]string{
		"Authorization":              bearer(t, testUserID, "usuario"),
		apphttp.HeaderIdempotencyKey: "k-1",
	}
	body := `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"outbound","quantity":2}`

	first := env.do(t, http.MethodPost, "/api/movements", body, headers)
	firstBody, _ := io.ReadAll(first.Body)
	first.Body.Close()
	second := env.do(t, http.MethodPost, "/api/movements", body, headers)
	secondBody, _ := io.ReadAll(second.Body)
	second.Body.Close()

	assert.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(apphttp.HeaderReplayed))
	assert.JSONEq(t, string(firstBody), string(secondBody))
	assert.Equal(t, 1, env.register.count(), "el reintento no registra un segundo movimiento")
}

func TestMovementHandler_Idempotencia_ClaveAisladaPorUsuario(t *testing.T) {
	env := newMovementEnv(t)
	body := `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"inbound","quantity":2}`

	for _, user := range []string{testUserID, "00000000-0000-0000-0000-000000000009"} {
		resp := env.do(t, http.MethodPost, "/api/movements", body, map[string]string{
			"Authorization":              bearer(t, user, "usuario"),
			apphttp.HeaderIdempotencyKey: "misma-clave",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	assert.Equal(t, 2, env.register.count())
}

func TestMovementHandler_Idempotencia_ErrorLiberaLaClave(t *testing.T) {
	env := newMovementEnv(t)
	headers := map[string]string{
		"Authorization":              bearer(t, testUserID, "usuario"),
		apphttp.HeaderIdempotencyKey: "k-err",
	}
	body := `{"product_id":"0b9f6a52-3c1e-4f8a-9d2b-7a1e5c4d3b21","type":"outbound","quantity":2}`

	env.register.err = domain.ErrInsufficientStock
	resp := env.do(t, http.MethodPost, "/api/movements", body, headers)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	env.register.err = nil
	resp = env.do(t, http.MethodPost, "/api/movements", body, headers)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(apphttp.HeaderReplayed))
	assert.Equal(t, 2, env.register.count())
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementHandler_List_PasaLosFiltros(t *testing.T) {
	env := newMovementEnv(t)
	resp := env.do(t, http.MethodGet, "/api/movements?type=outbound&category_id=5e2d8c41-7a3b-4c9e-8f10-2b6d4a9e7c53&date=2024-03-15", "",
		map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.MovementFilterRequest{Type: "outbound", CategoryID: "5e2d8c41-7a3b-4c9e-8f10-2b6d4a9e7c53", Date: "2024-03-15"}, env.query.filter)

	var out []dto.MovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out, 1)
}

func TestMovementHandler_List_FiltroInvalido_Retorna400(t *testing.T) {
	for _, q := range []string{"type=transfer", "date=2024-13-01", "date=15/03/2024", "category_id=abc"} {
		t.Run(q, func(t *testing.T) {
			env := newMovementEnv(t)
			resp := env.do(t, http.MethodGet, "/api/movements?"+q, "",
				map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
		})
	}
}

func TestMovementHandler_ListByProduct(t *testing.T) {
	env := newMovementEnv(t)
	resp := env.do(t, http.MethodGet, "/api/products/p-42/movements", "",
		map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "p-42", env.query.productID)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(body), "lista vacía, no null")
}

func TestMovementHandler_Report_DevuelvePDF(t *testing.T) {
	env := newMovementEnv(t)
	resp := env.do(t, http.MethodGet, "/api/movements/report.pdf?type=inbound", "",
		map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrados restringidos a admin
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_BorrarCategoria_UsuarioRecibe403(t *testing.T) {
	env := newMovementEnv(t)
	for _, path := range []string{"/api/categories/c1", "/api/products/p1"} {
		resp := env.do(t, http.MethodDelete, path, "",
			map[string]string{"Authorization": bearer(t, testUserID, "usuario")})
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
}
