// Package controller holds the gin handlers of the user center API.
package controller

import (
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/web/locale"
	"github.com/ycr/usercenter/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the checks shared by all controllers.
type BaseController struct{}

// checkLogin aborts with a not-logged-in envelope when the session carries
// no user.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		jsonErr(c, common.ErrNotLogin)
		c.Abort()
		return
	}
	c.Next()
}

// I18nWeb translates key for the language negotiated on this request.
func I18nWeb(c *gin.Context, key string, params ...string) string {
	return locale.I18n(locale.FromContext(c), key, params...)
}
