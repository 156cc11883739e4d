package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"intouch/internal/api"
	"intouch/internal/app"
	"intouch/internal/config"
	"intouch/internal/testkit"
	"intouch/pkg/types"
)

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = 0
	cfg.Database.Path = dbPath
	cfg.Auth.Secret = "integration-secret-0123456789"
	cfg.Delivery.PumpInterval = 100 * time.Millisecond
	cfg.Log.Level = "DEBUG"
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) *app.Application {
	t.Helper()
	application, err := app.NewApplication(cfg, testkit.Logger())
	require.NoError(t, err)
	require.NoError(t, application.Start(context.Background()))

	t.Cleanup(func() { stopApp(t, application) })
	return application
}

func stopApp(t *testing.T, application *app.Application) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, application.Stop(ctx))
}

func newApp(t *testing.T) *app.Application {
	t.Helper()
	return startApp(t, testConfig(t, filepath.Join(t.TempDir(), "intouch.db")))
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func connect(t *testing.T, application *app.Application, userID string) *client {
	t.Helper()
	token, err := application.Tokens().GenerateToken(userID)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+application.Addr()+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(op, requestID string, payload any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(map[string]any{
		"type":       op,
		"request_id": requestID,
		"payload":    payload,
	}))
}

func (c *client) next(timeout time.Duration) (types.Event, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return types.Event{}, err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return types.Event{}, err
	}
	var evt types.Event
	err = json.Unmarshal(data, &evt)
	return evt, err
}

// expect skips events until one of eventType arrives.
func (c *client) expect(eventType string) types.Event {
	c.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		evt, err := c.next(time.Until(deadline))
		require.NoError(c.t, err, "waiting for %s", eventType)
		if evt.Type == eventType {
			return evt
		}
	}
	c.t.Fatalf("no %s event arrived", eventType)
	return types.Event{}
}

// expectNone asserts no event of eventType arrives within d.
func (c *client) expectNone(eventType string, d time.Duration) {
	c.t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		evt, err := c.next(time.Until(deadline))
		if err != nil {
			return
		}
		require.NotEqual(c.t, eventType, evt.Type)
	}
}

func payload[T any](t *testing.T, evt types.Event) T {
	t.Helper()
	out, err := testkit.DecodePayload[T](evt)
	require.NoError(t, err)
	return out
}

func getJSON[T any](t *testing.T, application *app.Application, path, userID string) (int, T) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "http://"+application.Addr()+path, nil)
	require.NoError(t, err)
	if userID != "" {
		token, err := application.Tokens().GenerateToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out T
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

// waitConnections blocks until the server has registered n connections.
func waitConnections(t *testing.T, application *app.Application, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, health := getJSON[api.HealthResponse](t, application, "/health", "")
		return health.Connections["total_connections"] == n
	}, 3*time.Second, 20*time.Millisecond)
}
