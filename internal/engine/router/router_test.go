package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/history"
	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/internal/engine/repo"
	"github.com/go-arcade/qaboard/internal/engine/service"
	"github.com/go-arcade/qaboard/internal/engine/store"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/cache"
	"github.com/go-arcade/qaboard/pkg/http"
	"github.com/go-arcade/qaboard/pkg/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Detail json.RawMessage `json:"detail"`
}

func newTestApp(t *testing.T) (*fiber.App, *syncer.Engine) {
	t.Helper()
	kv, err := store.NewKV(store.Conf{Backend: store.BackendMemory}, cache.Redis{})
	require.NoError(t, err)

	engine := syncer.NewEngine(syncer.Conf{SaveDebounce: 10 * time.Millisecond}, repo.Disabled{}, store.NewLocalStore(kv))
	t.Cleanup(func() {
		_ = engine.Close(context.Background())
		_ = kv.Close()
	})

	media, err := storage.NewStorage(&storage.Storage{})
	require.NoError(t, err)
	board := service.NewBoardService(engine, media, storage.Storage{})

	rt := NewRouter(&http.Http{}, engine, board, media, history.Options{Location: time.UTC}, nil)
	return rt.Router(), engine
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Detail, &out))
	return out
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	status, env := call(t, app, nethttp.MethodGet, "/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, http.NotFound.Code, env.Code)
}

func TestRouter_Status(t *testing.T) {
	app, _ := newTestApp(t)
	status, env := call(t, app, nethttp.MethodGet, "/api/v1/status", nil)
	require.Equal(t, fiber.StatusOK, status)
	st := decode[syncer.Status](t, env)
	assert.False(t, st.Connected)
}

func TestRouter_TeamLifecycle(t *testing.T) {
	app, engine := newTestApp(t)

	status, env := call(t, app, nethttp.MethodPost, "/api/v1/teams", map[string]string{"name": "Alpha"})
	require.Equal(t, fiber.StatusCreated, status, env.Msg)
	team := decode[model.Team](t, env)
	assert.Equal(t, "Alpha", team.Name)

	base := fmt.Sprintf("/api/v1/teams/%d", team.Id)
	status, env = call(t, app, nethttp.MethodPost, base+"/features", map[string]string{"name": "Login"})
	require.Equal(t, fiber.StatusCreated, status, env.Msg)
	feature := decode[model.Feature](t, env)

	fbase := fmt.Sprintf("%s/features/%d", base, feature.Id)
	status, env = call(t, app, nethttp.MethodPost, fbase+"/steps", map[string]string{"description": "open login page"})
	require.Equal(t, fiber.StatusCreated, status, env.Msg)
	feature = decode[model.Feature](t, env)
	require.Len(t, feature.Steps, 1)

	status, env = call(t, app, nethttp.MethodPost, fmt.Sprintf("%s/steps/%d/verify", fbase, feature.Steps[0].Id),
		map[string]string{"status": "working"})
	require.Equal(t, fiber.StatusOK, status, env.Msg)
	feature = decode[model.Feature](t, env)
	assert.Equal(t, model.StatusWorking, feature.Steps[0].Status)

	status, env = call(t, app, nethttp.MethodPost, fbase+"/reset", nil)
	require.Equal(t, fiber.StatusOK, status, env.Msg)
	res := decode[service.ResetResult](t, env)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, syncer.OutcomeLocal, res.Entries[0].Outcome)
	assert.Len(t, engine.Verifications(), 1)

	day := time.Now().UTC().Format(time.DateOnly)
	status, env = call(t, app, nethttp.MethodGet, "/api/v1/verifications?start="+day, nil)
	require.Equal(t, fiber.StatusOK, status, env.Msg)
	assert.Len(t, decode[[]model.GlobalVerification](t, env), 1)

	status, env = call(t, app, nethttp.MethodGet,
		fmt.Sprintf("/api/v1/history/reconstruct?teamId=%d&teamName=Alpha&start=%s", team.Id, day), nil)
	require.Equal(t, fiber.StatusOK, status, env.Msg)
	rebuilt := decode[model.Team](t, env)
	require.Len(t, rebuilt.Features, 1)
	assert.Equal(t, model.StatusWorking, rebuilt.Features[0].Steps[0].Status)

	status, _ = call(t, app, nethttp.MethodDelete, base, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, env = call(t, app, nethttp.MethodGet, "/api/v1/teams/trash", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]model.Team](t, env), 1)
}

func TestRouter_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := call(t, app, nethttp.MethodGet, "/api/v1/teams/42", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, http.NotFound.Code, env.Code)

	status, env = call(t, app, nethttp.MethodGet, "/api/v1/teams/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.RequestParameterParsingFailed.Code, env.Code)

	status, env = call(t, app, nethttp.MethodPost, "/api/v1/teams/reorder", map[string]int{"from": 0, "to": 3})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.ValidationError.Code, env.Code)

	status, _ = call(t, app, nethttp.MethodGet, "/api/v1/history/reconstruct?teamId=1&start=2024-01-01", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = call(t, app, nethttp.MethodGet, "/api/v1/verifications?start=yesterday", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2024-03-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDay("1710460800000", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDay("", time.UTC)
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}
