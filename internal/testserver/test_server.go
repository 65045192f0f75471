// Package testserver runs the full HTTP stack over an in-memory database for
// end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/roundup/internal/app"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/mcp"
	"github.com/rpggio/roundup/internal/sqlite"
	"github.com/rpggio/roundup/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	App      *app.App
	Clock    *clock.Fixed
	Token    string
	MemberID string
}

// New starts a server whose clock reads now. memberID joins groupID and
// gets token as its API key.
func New(t *testing.T, now time.Time, token, memberID, groupID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	clk := clock.NewFixed(now)
	registry := prometheus.NewRegistry()
	services := app.New(db, app.Options{Location: time.UTC, Clock: clk, Registerer: registry})

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services.MCPServices(),
		Resolver:      services.APIKeys,
		AuthEnabled:   true,
		TransportMode: "http",
		Location:      time.UTC,
		Clock:         clk,
	})
	router := transport.NewRouter(transport.RouterConfig{
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
		),
		Auth:    transport.RequireAPIKey(services.APIKeys, nil),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		App:      services,
		Clock:    clk,
		Token:    token,
		MemberID: memberID,
	}

	ctx := context.Background()
	_, err = services.Members.Add(ctx, group.AddRequest{ID: memberID, GroupID: groupID, DisplayName: memberID})
	require.NoError(t, err)
	require.NoError(t, services.APIKeys.Add(ctx, memberID, token, now))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Connect opens an MCP client session that sends token as its bearer key.
func (ts *TestServer) Connect(t *testing.T, token string) (*sdkmcp.ClientSession, error) {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearer{token: token, base: http.DefaultTransport}},
	}, nil)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { session.Close() })
	return session, nil
}

type bearer struct {
	token string
	base  http.RoundTripper
}

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(r)
}
