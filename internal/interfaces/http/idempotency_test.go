package http_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Suministros-api/internal/interfaces/http"
	pkgredis "github.com/jhoicas/Suministros-api/pkg/redis"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", pkgredis.ErrNil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

// idempotentApp monta POST /op con un contador de ejecuciones. fail hace que el handler
// devuelva un error de dominio.
func idempotentApp(store pkgredis.IdempotencyStore, calls *int, fail *bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(nil)})
	app.Post("/op",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.Idempotency(store, time.Hour, nil),
		func(c *fiber.Ctx) error {
			*calls++
			if fail != nil && *fail {
				return domain.ErrInsufficientStock
			}
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": *calls})
		},
	)
	return app
}

func postOp(t *testing.T, app *fiber.App, key, body string) (int, string, http.Header) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/op", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleAlmacen))
	if key != "" {
		req.Header.Set(apphttp.HeaderIdempotencyKey, key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw), resp.Header
}

func TestIdempotency_RepiteRespuestaGuardada(t *testing.T) {
	var calls int
	app := idempotentApp(newFakeStore(), &calls, nil)

	status, body, _ := postOp(t, app, "k-1", `{"a":1}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)

	status, body, hdr := postOp(t, app, "k-1", `{"a":1}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", hdr.Get("Idempotent-Replay"))
	assert.Equal(t, 1, calls, "la segunda petición no ejecuta el handler")
}

func TestIdempotency_MismaLlaveOtroCuerpo(t *testing.T) {
	var calls int
	app := idempotentApp(newFakeStore(), &calls, nil)

	status, _, _ := postOp(t, app, "k-1", `{"a":1}`)
	require.Equal(t, http.StatusCreated, status)

	status, body, _ := postOp(t, app, "k-1", `{"a":2}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 1, calls)
}

func TestIdempotency_SinLlaveOSinStoreNoGuarda(t *testing.T) {
	var calls int
	app := idempotentApp(newFakeStore(), &calls, nil)
	postOp(t, app, "", `{}`)
	postOp(t, app, "", `{}`)
	assert.Equal(t, 2, calls)

	calls = 0
	app = idempotentApp(nil, &calls, nil)
	postOp(t, app, "k-1", `{}`)
	postOp(t, app, "k-1", `{}`)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ErroresNoSeGuardan(t *testing.T) {
	var calls int
	fail := true
	app := idempotentApp(newFakeStore(), &calls, &fail)

	status, body, _ := postOp(t, app, "k-1", `{}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "INSUFFICIENT_STOCK")

	fail = false
	status, _, _ = postOp(t, app, "k-1", `{}`)
	assert.Equal(t, http.StatusCreated, status, "el reintento tras un error se ejecuta")
	assert.Equal(t, 2, calls)
}

type brokenStore struct{ fakeStore }

func (b *brokenStore) Get(context.Context, string) (string, error) {
	return "", errors.New("redis caído")
}

func TestIdempotency_StoreNoDisponible(t *testing.T) {
	var calls int
	app := idempotentApp(&brokenStore{fakeStore: fakeStore{data: map[string]string{}}}, &calls, nil)

	status, body, _ := postOp(t, app, "k-1", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "IDEMPOTENCY_UNAVAILABLE")
	assert.Zero(t, calls)
}

func TestIdempotency_PeticionesSimultaneasEjecutanUnaVez(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	unblock := make(chan struct{})
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(nil)})
	app.Post("/op",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.Idempotency(newFakeStore(), time.Hour, nil),
		func(c *fiber.Ctx) error {
			n := calls.Add(1)
			if n == 1 {
				close(started)
				<-unblock
			}
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": n})
		},
	)

	token := tokenForRole(t, entity.RoleAlmacen)
	firstStatus := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/op", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)
		req.Header.Set(apphttp.HeaderIdempotencyKey, "k-1")
		resp, err := app.Test(req, -1)
		if err != nil {
			firstStatus <- 0
			return
		}
		resp.Body.Close()
		firstStatus <- resp.StatusCode
	}()

	<-started
	status, body, _ := postOp(t, app, "k-1", `{"a":1}`)
	assert.Equal(t, http.StatusConflict, status, "la llave está reservada mientras corre el handler")
	assert.Contains(t, body, "IDEMPOTENCY_IN_PROGRESS")

	close(unblock)
	assert.Equal(t, http.StatusCreated, <-firstStatus)

	status, body, hdr := postOp(t, app, "k-1", `{"a":1}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", hdr.Get("Idempotent-Replay"))
	assert.Equal(t, int32(1), calls.Load())
}

// racyStore simula perder la carrera: Get no ve nada y SetNX encuentra la reserva ajena.
type racyStore struct {
	fakeStore
	getCalls int
}

func (r *racyStore) Get(ctx context.Context, key string) (string, error) {
	r.getCalls++
	if r.getCalls == 1 {
		return "", pkgredis.ErrNil
	}
	return r.fakeStore.Get(ctx, key)
}

func TestIdempotency_ReservaPerdidaResponde409(t *testing.T) {
	var calls int
	store := &racyStore{fakeStore: fakeStore{data: map[string]string{}}}
	app := idempotentApp(store, &calls, nil)
	store.data[store.IdempotencyKey(testUserID+"|POST|/op", "k-1")] = `{"pending":true,"request_hash":"otro"}`

	status, body, _ := postOp(t, app, "k-1", `{"a":1}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "IDEMPOTENCY_KEY_REUSED")
	assert.Zero(t, calls)
}

func TestIdempotency_ErrorLiberaLaReserva(t *testing.T) {
	var calls int
	fail := true
	store := newFakeStore()
	app := idempotentApp(store, &calls, &fail)

	status, _, _ := postOp(t, app, "k-1", `{}`)
	require.Equal(t, http.StatusConflict, status)
	store.mu.Lock()
	assert.Empty(t, store.data, "sin reserva colgada tras el error")
	store.mu.Unlock()
}
