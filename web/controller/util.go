package controller

import (
	"net"
	"net/http"
	"strings"

	"github.com/ycr/usercenter/logger"
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/web/entity"
	"github.com/ycr/usercenter/web/middleware"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the client address, preferring proxy headers.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return ip
}

// jsonOk writes a success envelope carrying obj.
func jsonOk(c *gin.Context, obj any) {
	c.JSON(http.StatusOK, entity.Msg{
		Code:    common.CodeSuccess,
		Data:    obj,
		Message: I18nWeb(c, common.CodeSuccess.MessageKey()),
	})
}

// jsonErr writes the failure envelope for err. The message is the
// translated code text followed by the error detail, if any.
func jsonErr(c *gin.Context, err error) {
	code := common.CodeOf(err)
	msg := I18nWeb(c, code.MessageKey())
	if detail := common.DetailOf(err); detail != "" {
		msg += " (" + detail + ")"
	}
	if code == common.CodeSystem {
		logger.Warningf("%s %s failed [request %s]: %v", c.Request.Method, c.FullPath(), middleware.GetRequestId(c), err)
	}
	c.JSON(http.StatusOK, entity.Msg{
		Code:    code,
		Message: msg,
	})
}

// jsonResult writes obj on success and the error envelope otherwise.
func jsonResult(c *gin.Context, obj any, err error) {
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonOk(c, obj)
}
