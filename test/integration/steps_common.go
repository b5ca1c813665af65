package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/tidwall/gjson"

	sessiongorm "github.com/doodlesbykumbi/storefront-admin/pkg/session/gorm"
)

// StepsContext holds state shared between the steps of one scenario.
type StepsContext struct {
	tc           *TestContext
	client       *http.Client
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a steps context with an empty cookie jar.
func NewStepsContext(tc *TestContext) *StepsContext {
	jar, _ := cookiejar.New(nil)
	return &StepsContext{
		tc: tc,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			// Redirects are asserted on, not followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetSessions()
	})

	// Background steps
	sc.Step(`^the storefront server is running$`, s.theServerIsRunning)
	sc.Step(`^I am signed in as "([^"]*)" with password "([^"]*)"$`, s.iAmSignedIn)

	// Session steps
	sc.Step(`^I sign in as "([^"]*)" with password "([^"]*)"$`, s.iSignIn)
	sc.Step(`^I sign out$`, s.iSignOut)
	sc.Step(`^the session store should hold (\d+) sessions?$`, s.theSessionStoreShouldHold)
	sc.Step(`^the stored session tokens should be encrypted$`, s.theStoredTokensShouldBeEncrypted)

	// Request steps
	sc.Step(`^I visit "([^"]*)"$`, s.iVisit)
	sc.Step(`^I request "([^"]*)" as JSON$`, s.iRequestAsJSON)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^I should be redirected to "([^"]*)"$`, s.iShouldBeRedirectedTo)
	sc.Step(`^the page should contain "([^"]*)"$`, s.thePageShouldContain)
	sc.Step(`^the page should not contain "((?:[^"\\]|\\.)*)"$`, s.thePageShouldNotContain)
	sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, s.theJSONFieldShouldBe)

	s.registerProductSteps(sc)
}

func (s *StepsContext) theServerIsRunning() error {
	return waitForServer(s.tc.Server.URL, 5*time.Second)
}

func (s *StepsContext) iAmSignedIn(username, password string) error {
	if err := s.iSignIn(username, password); err != nil {
		return err
	}
	return s.iShouldBeRedirectedTo("/")
}

func (s *StepsContext) iSignIn(username, password string) error {
	return s.post("/login", url.Values{"username": {username}, "password": {password}})
}

func (s *StepsContext) iSignOut() error {
	return s.post("/logout", url.Values{})
}

func (s *StepsContext) theSessionStoreShouldHold(n int) error {
	var count int64
	if err := s.tc.DB.Model(&sessiongorm.StoredSession{}).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(n) {
		return fmt.Errorf("expected %d sessions, found %d", n, count)
	}
	return nil
}

func (s *StepsContext) theStoredTokensShouldBeEncrypted() error {
	var rows []sessiongorm.StoredSession
	if err := s.tc.DB.Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no sessions stored")
	}
	for _, row := range rows {
		if strings.Contains(string(row.Token), "access-") || strings.Contains(string(row.RefreshToken), "refresh-") {
			return fmt.Errorf("session %s holds a plaintext token", row.ID)
		}
	}
	return nil
}

func (s *StepsContext) iVisit(path string) error {
	return s.do("GET", path, nil, "")
}

func (s *StepsContext) iRequestAsJSON(path string) error {
	return s.do("GET", path, nil, "application/json")
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iShouldBeRedirectedTo(path string) error {
	if err := s.theResponseStatusShouldBe(http.StatusSeeOther); err != nil {
		return err
	}
	if loc := s.response.Header.Get("Location"); loc != path {
		return fmt.Errorf("expected redirect to %q, got %q", path, loc)
	}
	return nil
}

func (s *StepsContext) thePageShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected page to contain %q", text)
	}
	return nil
}

func (s *StepsContext) thePageShouldNotContain(text string) error {
	text = strings.ReplaceAll(text, `\"`, `"`)
	if strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected page not to contain %q", text)
	}
	return nil
}

func (s *StepsContext) theJSONFieldShouldBe(path, expected string) error {
	value := gjson.GetBytes(s.responseBody, path)
	if !value.Exists() {
		return fmt.Errorf("JSON field %q not found in %s", path, string(s.responseBody))
	}
	if value.String() != expected {
		return fmt.Errorf("expected JSON field %q to be %q, got %q", path, expected, value.String())
	}
	return nil
}

func (s *StepsContext) post(path string, form url.Values) error {
	return s.do("POST", path, strings.NewReader(form.Encode()), "")
}

func (s *StepsContext) do(method, path string, body io.Reader, accept string) error {
	req, err := http.NewRequest(method, s.tc.Server.URL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	s.response, err = s.client.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}
