package api_test

import (
	"net/http"
	"testing"

	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	// Pre-create a user for login tests
	testutil.GetAuthCookie(t, server, "testuser", "password123", models.RoleStaff)

	t.Run("Successful Login", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/api/users/login", `{"username":"testuser", "password":"password123"}`, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var session *http.Cookie
		for _, cookie := range rr.Result().Cookies() {
			if cookie.Name == "session_token" {
				session = cookie
			}
		}
		require.NotNil(t, session, "session_token cookie not found in response")
		assert.NotEmpty(t, session.Value)
		assert.True(t, session.HttpOnly)

		user := decodeBody[models.User](t, rr)
		assert.Equal(t, "testuser", user.Username)
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("Login with Wrong Password", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/api/users/login", `{"username":"testuser", "password":"wrongpassword"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Login with Unknown User", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/api/users/login", `{"username":"ghost", "password":"password123"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Login without Password", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/api/users/login", `{"username":"testuser"}`, nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody[map[string]any](t, rr)
		assert.Equal(t, "password is required", body["error"])
	})

	t.Run("Get Me (Authenticated)", func(t *testing.T) {
		userCookie := testutil.GetAuthCookie(t, server, "getme_user", "password", models.RoleStaff)

		rr := doRequest(t, router, "GET", "/api/users/me", nil, userCookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		user := decodeBody[models.User](t, rr)
		assert.Equal(t, "getme_user", user.Username)
		assert.Equal(t, models.RoleStaff, user.Role)
	})

	t.Run("Get Me (Unauthenticated)", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/users/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Logout invalidates the session", func(t *testing.T) {
		cookie := testutil.GetAuthCookie(t, server, "logout_user", "password", models.RoleStaff)

		rr := doRequest(t, router, "POST", "/api/users/logout", nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = doRequest(t, router, "GET", "/api/users/me", nil, cookie)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
