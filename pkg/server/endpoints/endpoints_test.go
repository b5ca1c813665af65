package endpoints

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/storefront-admin/pkg/audit"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog"
	"github.com/doodlesbykumbi/storefront-admin/pkg/catalog/catalogtest"
	"github.com/doodlesbykumbi/storefront-admin/pkg/config"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session"
	"github.com/doodlesbykumbi/storefront-admin/pkg/session/memory"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	srv   *server.Server
	api   *catalogtest.API
	audit *bytes.Buffer
}

func newTestEnv(t *testing.T, products int) *testEnv {
	t.Helper()

	api := catalogtest.NewAPI(catalogtest.SampleProducts(products))
	t.Cleanup(api.Close)

	cfg := config.Default()
	cfg.APIBaseURL = api.URL
	cfg.MetricsEnabled = false

	client := catalog.NewClient(catalog.Config{BaseURL: api.URL})
	manager := session.NewManager(memory.New(), session.NewCookieCodec(testSigningKey, false), client)

	srv, err := server.NewServer(cfg, manager, client, nil, "127.0.0.1", "0")
	require.NoError(t, err)
	RegisterAll(srv)

	var buf bytes.Buffer
	audit.SetEnabled(true)
	audit.DefaultLogger.SetWriter(&buf)
	t.Cleanup(func() { audit.DefaultLogger.SetWriter(os.Stdout) })

	return &testEnv{srv: srv, api: api, audit: &buf}
}

// do sends a request through the router. A non-nil form is posted
// url-encoded.
func (e *testEnv) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) getJSON(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(rec, req)
	return rec
}

// login signs in with the demo account and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do("POST", "/login", url.Values{
		"username": {catalogtest.DemoUsername},
		"password": {catalogtest.DemoPassword},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	c := cookieNamed(rec, session.CookieName)
	require.NotNil(t, c)
	return c
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
