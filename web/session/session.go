// Package session keeps the logged-in user in the gin session.
package session

import (
	"net/http"

	"github.com/ycr/usercenter/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName names the session cookie.
	CookieName = "usercenter"

	loginUser = "USER_LOGIN_STATE"
	maxAgeKey = "MAX_AGE"
)

func cookieOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetLoginUser stores the user snapshot. The cookie options set by
// SetMaxAge at login are applied again, so a later refresh keeps them.
func SetLoginUser(c *gin.Context, user *model.SafeUser) error {
	if user == nil {
		return nil
	}
	s := sessions.Default(c)
	if maxAge, ok := s.Get(maxAgeKey).(int); ok {
		s.Options(cookieOptions(maxAge))
	}
	s.Set(loginUser, *user)
	return s.Save()
}

// SetMaxAge sets the cookie lifetime in seconds and remembers it for the
// rest of the session.
func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Set(maxAgeKey, maxAge)
	s.Options(cookieOptions(maxAge))
	return s.Save()
}

func GetLoginUser(c *gin.Context) *model.SafeUser {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(model.SafeUser); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

// IsAdmin reports whether the session belongs to an administrator.
func IsAdmin(c *gin.Context) bool {
	return GetLoginUser(c).IsAdmin()
}

// ClearLoginUser drops the login state and expires the cookie. It reports
// whether a user was logged in; clearing an anonymous session is not an
// error.
func ClearLoginUser(c *gin.Context) (bool, error) {
	s := sessions.Default(c)
	wasLogin := s.Get(loginUser) != nil
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return wasLogin, err
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	return wasLogin, nil
}
