package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoamiEndpoint(t *testing.T) {
	env := newTestEnv(t, 1)

	t.Run("whoami without a session", func(t *testing.T) {
		rec := env.getJSON("/whoami")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("whoami with a session", func(t *testing.T) {
		cookie := env.login(t)

		rec := env.getJSON("/whoami", cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp WhoamiResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "emilys", resp.Username)
		assert.Equal(t, "Emily", resp.FirstName)
		assert.Equal(t, "Johnson", resp.LastName)
		assert.NotEmpty(t, resp.SessionID)
	})
}
