// Package entity defines the request forms and the response envelope of the
// web layer.
package entity

import (
	"strings"

	"github.com/ycr/usercenter/database/model"
	"github.com/ycr/usercenter/util/common"
)

// Msg is the uniform response envelope.
type Msg struct {
	Code    common.ErrorCode `json:"code"`              // 0 on success
	Data    any              `json:"data"`              // payload, null on failure
	Message string           `json:"message,omitempty"` // human readable outcome
}

type RegisterForm struct {
	Account         string `json:"account" form:"account"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

type LoginForm struct {
	Account  string `json:"account" form:"account"`
	Password string `json:"password" form:"password"`
}

// UserUpdateForm carries a partial update; nil fields are left untouched.
type UserUpdateForm struct {
	Id        int64         `json:"id"`
	Username  *string       `json:"username"`
	AvatarUrl *string       `json:"avatarUrl"`
	Gender    *int          `json:"gender"`
	Phone     *string       `json:"phone"`
	Email     *string       `json:"email"`
	Tags      *[]string     `json:"tags"`
	Role      *model.Role   `json:"role"`
	Status    *model.Status `json:"status"`
}

// TouchesPrivileges reports whether the form changes role or status.
func (f *UserUpdateForm) TouchesPrivileges() bool {
	return f.Role != nil || f.Status != nil
}

// Apply copies the supplied fields onto u and returns their column names.
func (f *UserUpdateForm) Apply(u *model.User) []string {
	cols := make([]string, 0, 8)
	if f.Username != nil {
		u.Username = *f.Username
		cols = append(cols, "username")
	}
	if f.AvatarUrl != nil {
		u.AvatarUrl = *f.AvatarUrl
		cols = append(cols, "avatar_url")
	}
	if f.Gender != nil {
		u.Gender = *f.Gender
		cols = append(cols, "gender")
	}
	if f.Phone != nil {
		u.Phone = *f.Phone
		cols = append(cols, "phone")
	}
	if f.Email != nil {
		u.Email = *f.Email
		cols = append(cols, "email")
	}
	if f.Tags != nil {
		u.Tags = *f.Tags
		if u.Tags == nil {
			u.Tags = []string{}
		}
		cols = append(cols, "tags")
	}
	if f.Role != nil {
		u.Role = *f.Role
		cols = append(cols, "role")
	}
	if f.Status != nil {
		u.Status = *f.Status
		cols = append(cols, "status")
	}
	return cols
}

// IdForm is the object form of the delete body.
type IdForm struct {
	Id int64 `json:"id"`
}

// IsAnyBlank reports whether any of the strings is empty or whitespace.
func IsAnyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
