package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycr/usercenter/database/model"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(CookieName, cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.GET("/login", func(c *gin.Context) {
		err := SetLoginUser(c, &model.SafeUser{Id: 7, Account: "alice", Role: model.RoleAdmin})
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/loginWithMaxAge", func(c *gin.Context) {
		if err := SetMaxAge(c, 3600); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if err := SetLoginUser(c, &model.SafeUser{Id: 7, Account: "alice"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/refresh", func(c *gin.Context) {
		if err := SetLoginUser(c, &model.SafeUser{Id: 7, Account: "alice", Username: "Alice"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/me", func(c *gin.Context) {
		user := GetLoginUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		if IsAdmin(c) {
			c.String(http.StatusOK, "admin "+user.Account)
			return
		}
		c.String(http.StatusOK, user.Account)
	})
	r.GET("/logout", func(c *gin.Context) {
		ok, err := ClearLoginUser(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if ok {
			c.String(http.StatusOK, "1")
			return
		}
		c.String(http.StatusOK, "0")
	})
	return r
}

func do(t *testing.T, r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginUserRoundTrip(t *testing.T) {
	r := newRouter()

	w := do(t, r, "/me", nil)
	assert.Equal(t, "anonymous", w.Body.String())

	w = do(t, r, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(t, r, "/me", cookies)
	assert.Equal(t, "admin alice", w.Body.String())
}

func TestClearLoginUser(t *testing.T) {
	r := newRouter()

	w := do(t, r, "/logout", nil)
	assert.Equal(t, "0", w.Body.String())

	cookies := do(t, r, "/login", nil).Result().Cookies()
	w = do(t, r, "/logout", cookies)
	assert.Equal(t, "1", w.Body.String())

	var expired bool
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			expired = true
		}
	}
	assert.True(t, expired)
}

func lastCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[len(cookies)-1]
}

func TestRefreshKeepsLoginCookieOptions(t *testing.T) {
	r := newRouter()

	w := do(t, r, "/loginWithMaxAge", nil)
	require.Equal(t, http.StatusOK, w.Code)
	login := lastCookie(t, w)
	assert.Equal(t, 3600, login.MaxAge)

	w = do(t, r, "/refresh", []*http.Cookie{login})
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := lastCookie(t, w)
	assert.Equal(t, 3600, refreshed.MaxAge)
	assert.False(t, refreshed.Secure)
	assert.True(t, refreshed.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, refreshed.SameSite)

	w = do(t, r, "/me", []*http.Cookie{refreshed})
	assert.Equal(t, "alice", w.Body.String())
}
