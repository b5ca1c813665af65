package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"time"

	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/config"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/endpoints"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
	sessiongorm "github.com/doodlesbykumbi/storefront-admin/pkg/session/gorm"
)

// ServerInstance is a running storefront server.
type ServerInstance struct {
	URL string

	httpServer *httptest.Server
	process    *exec.Cmd
	cancel     context.CancelFunc
}

func startInlineServer(tc *TestContext) (*ServerInstance, error) {
	cfg := config.Default()
	cfg.APIBaseURL = tc.Catalog.URL
	cfg.SessionStore = config.SessionStorePostgres
	cfg.MetricsEnabled = false

	store := sessiongorm.New(tc.DB, tc.Cipher)
	client := catalog.NewClient(catalog.Config{BaseURL: tc.Catalog.URL, Timeout: cfg.RequestTimeout()})
	codec := session.NewCookieCodec(tc.Cipher.Derive(session.SigningPurpose), false)
	sessions := session.NewManager(store, codec, client, session.WithTTL(cfg.SessionTTL()))

	s, err := server.NewServer(cfg, sessions, client, nil, "127.0.0.1", "0")
	if err != nil {
		return nil, err
	}
	s.Health = store
	endpoints.RegisterAll(s)

	ts := httptest.NewServer(s.Handler())
	return &ServerInstance{URL: ts.URL, httpServer: ts}, nil
}

// startBinaryServer starts storefrontctl server on a free port.
func startBinaryServer(binaryPath string, tc *TestContext) (*ServerInstance, error) {
	port, err := freePort()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Migrations already ran in the test setup.
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", fmt.Sprint(port))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+tc.DatabaseURL,
		"STOREFRONT_DATA_KEY="+tc.DataKey,
		"STOREFRONT_API_BASE_URL="+tc.Catalog.URL,
		"STOREFRONT_SESSION_STORE=postgres",
		"STOREFRONT_METRICS_ENABLED=false",
		"STOREFRONT_CONFIG_PATH="+os.TempDir(),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		URL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		process: cmd,
		cancel:  cancel,
	}
	if err := waitForServer(instance.URL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server.
func (si *ServerInstance) Stop() {
	if si.httpServer != nil {
		si.httpServer.Close()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.process != nil && si.process.Process != nil {
		_ = si.process.Process.Kill()
		_ = si.process.Wait()
	}
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitForServer polls the status endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/status?format=json")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}
