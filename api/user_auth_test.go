package api

import (
	"bitwise74/fileshare-api/middleware"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authRouter wires the real JWT middleware instead of the test auth header,
// so login cookies flow through the same path production uses
func authRouter(t *testing.T) *API {
	t.Helper()

	viper.Set("jwt.secret", "test-secret")

	a := testAPI(t)

	r := gin.New()
	r.Use(middleware.NewRequestIDMiddleware())

	r.POST("/api/users", a.UserRegister)
	r.POST("/api/users/login", a.UserLogin)
	r.GET("/api/stats", middleware.NewJWTMiddleware(a.DB), a.UserStats)

	a.Router = r
	return a
}

func TestRegisterLoginRoundtrip(t *testing.T) {
	a := authRouter(t)

	w := do(a, jsonReq(t, "POST", "/api/users", "", registerBody{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reg struct {
		UserID string `json:"userID"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.Len(t, reg.UserID, 16)

	// Taken credentials are a conflict
	w = do(a, jsonReq(t, "POST", "/api/users", "", registerBody{
		Username: "alice",
		Email:    "other@example.com",
		Password: "correct horse battery staple",
	}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/users/login", "", loginBody{
		Email:    "alice@example.com",
		Password: "wrong password",
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/users/login", "", loginBody{
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var authCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "auth_token" {
			authCookie = ck
		}
	}
	require.NotNil(t, authCookie)
	assert.True(t, authCookie.HttpOnly)

	// The cookie opens protected routes
	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.AddCookie(authCookie)
	w = do(a, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// No cookie, no entry
	w = do(a, httptest.NewRequest("GET", "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Neither does a token signed with some other key
	req = httptest.NewRequest("GET", "/api/stats", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "not.a.jwt"})
	w = do(a, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	a := authRouter(t)

	cases := []registerBody{
		{Username: "", Email: "a@example.com", Password: "long enough"},
		{Username: "has spaces", Email: "a@example.com", Password: "long enough"},
		{Username: "alice", Email: "not-an-email", Password: "long enough"},
		{Username: "alice", Email: "a@example.com", Password: "short"},
	}

	for _, body := range cases {
		w := do(a, jsonReq(t, "POST", "/api/users", "", body))
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	}
}
