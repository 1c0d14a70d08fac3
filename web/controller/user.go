package controller

import (
	"bytes"

	"github.com/ycr/usercenter/logger"
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/web/entity"
	"github.com/ycr/usercenter/web/service"
	"github.com/ycr/usercenter/web/session"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// UserController serves registration, login and account management.
type UserController struct {
	BaseController

	userService    service.UserService
	settingService service.SettingService
}

func NewUserController(g *gin.RouterGroup) *UserController {
	a := &UserController{}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g.POST("/register", a.register)
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)
	g.GET("/search", a.searchUsers)
	g.GET("/search/tags", a.searchUsersByTags)
	g.POST("/delete", a.deleteUser)

	authed := g.Group("")
	authed.Use(a.checkLogin)
	authed.GET("/current", a.current)
	authed.POST("/update", a.updateUser)
}

func (a *UserController) register(c *gin.Context) {
	var form entity.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		jsonErr(c, common.Validation("invalid form data"))
		return
	}
	if entity.IsAnyBlank(form.Account, form.Password, form.ConfirmPassword) {
		jsonErr(c, common.Validation("account and passwords are required"))
		return
	}

	id, err := a.userService.Register(form.Account, form.Password, form.ConfirmPassword)
	if err != nil {
		jsonErr(c, err)
		return
	}
	logger.Infof("account %q registered with id %d, IP: %s", form.Account, id, getRemoteIp(c))
	jsonOk(c, id)
}

func (a *UserController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonErr(c, common.Validation("invalid form data"))
		return
	}
	if entity.IsAnyBlank(form.Account, form.Password) {
		jsonErr(c, common.Validation("account and password are required"))
		return
	}

	user, err := a.userService.Login(form.Account, form.Password)
	if err != nil {
		if common.CodeOf(err) == common.CodeLoginFailed {
			logger.Warningf("failed login for account %q, IP: %s", form.Account, getRemoteIp(c))
		}
		jsonErr(c, err)
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB:", err)
	} else if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
		logger.Warning("Unable to set session's max age:", err)
	}
	if err := session.SetLoginUser(c, user); err != nil {
		jsonErr(c, common.Internal(err))
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", user.Account, getRemoteIp(c))
	jsonOk(c, user)
}

func (a *UserController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	cleared, err := session.ClearLoginUser(c)
	if err != nil {
		jsonErr(c, common.Internal(err))
		return
	}
	if user != nil {
		logger.Infof("%s logged out successfully", user.Account)
	}
	if cleared {
		jsonOk(c, 1)
		return
	}
	jsonOk(c, 0)
}

func (a *UserController) current(c *gin.Context) {
	jsonOk(c, session.GetLoginUser(c))
}

func (a *UserController) searchUsers(c *gin.Context) {
	users, err := a.userService.SearchByUsername(c.Query("username"), session.IsAdmin(c))
	jsonResult(c, users, err)
}

// searchUsersByTags is open to anonymous callers.
func (a *UserController) searchUsersByTags(c *gin.Context) {
	users, err := a.userService.SearchByTags(c.QueryArray("tagNameList"))
	jsonResult(c, users, err)
}

func (a *UserController) updateUser(c *gin.Context) {
	var form entity.UserUpdateForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonErr(c, common.Validation("invalid form data"))
		return
	}

	acting := session.GetLoginUser(c)
	affected, err := a.userService.UpdateUser(&form, acting)
	if err != nil {
		jsonErr(c, err)
		return
	}
	if form.Id == acting.Id {
		a.refreshLoginUser(c, acting.Id)
	}
	jsonOk(c, affected)
}

// refreshLoginUser replaces the session snapshot with the stored row.
func (a *UserController) refreshLoginUser(c *gin.Context, id int64) {
	user, err := a.userService.GetById(id)
	if err != nil {
		logger.Warning("Unable to reload user for session:", err)
		return
	}
	if err := session.SetLoginUser(c, a.userService.GetSafeView(user)); err != nil {
		logger.Warning("Unable to save session:", err)
	}
}

func (a *UserController) deleteUser(c *gin.Context) {
	isAdmin := session.IsAdmin(c)
	if !isAdmin {
		jsonErr(c, common.NoAuth("administrator role required"))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		jsonErr(c, common.Validation("invalid request body"))
		return
	}
	id, err := parseDeleteId(body)
	if err != nil {
		jsonErr(c, err)
		return
	}

	deleted, err := a.userService.DeleteById(id, isAdmin)
	if err == nil && deleted {
		logger.Infof("user %d deleted by %s", id, session.GetLoginUser(c).Account)
	}
	jsonResult(c, deleted, err)
}

// parseDeleteId accepts either a bare JSON integer or {"id": n}.
func parseDeleteId(body []byte) (int64, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return 0, common.Validation("user id is required")
	}
	if body[0] == '{' {
		var form entity.IdForm
		if err := json.Unmarshal(body, &form); err != nil {
			return 0, common.Validation("invalid request body")
		}
		return form.Id, nil
	}
	var id int64
	if err := json.Unmarshal(body, &id); err != nil {
		return 0, common.Validation("user id must be an integer")
	}
	return id, nil
}
