// Package model holds the gorm entities of the account store.
package model

import (
	"encoding/gob"
	"time"

	"gorm.io/gorm"
)

// Role is the authorization level of an account.
type Role int

const (
	RoleUser  Role = 0
	RoleAdmin Role = 1
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Status tells whether an account may log in.
type Status int

const (
	StatusActive   Status = 0
	StatusDisabled Status = 1
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDisabled
}

type User struct {
	Id        int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Account   string         `json:"account" gorm:"size:256;not null;index:idx_users_account,unique,where:deleted_at IS NULL"`
	Password  string         `json:"-" gorm:"size:512;not null"`
	Username  string         `json:"username" gorm:"size:256;index"`
	AvatarUrl string         `json:"avatarUrl" gorm:"size:1024"`
	Gender    int            `json:"gender"`
	Phone     string         `json:"phone" gorm:"size:128"`
	Email     string         `json:"email" gorm:"size:512"`
	Tags      []string       `json:"tags" gorm:"serializer:json;type:text"`
	Role      Role           `json:"role" gorm:"not null;default:0"`
	Status    Status         `json:"status" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"createTime"`
	UpdatedAt time.Time      `json:"updateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// SafeUser is the outward view of a User: everything but the password
// digest and the soft-delete marker.
type SafeUser struct {
	Id        int64     `json:"id"`
	Account   string    `json:"account"`
	Username  string    `json:"username"`
	AvatarUrl string    `json:"avatarUrl"`
	Gender    int       `json:"gender"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Tags      []string  `json:"tags"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`
}

func init() {
	// session values are gob encoded
	gob.Register(SafeUser{})
}

// Safe projects u onto its safe view. The tag slice is copied so the view
// never aliases the entity.
func (u *User) Safe() *SafeUser {
	if u == nil {
		return nil
	}
	var tags []string
	if u.Tags != nil {
		tags = make([]string, len(u.Tags))
		copy(tags, u.Tags)
	}
	return &SafeUser{
		Id:        u.Id,
		Account:   u.Account,
		Username:  u.Username,
		AvatarUrl: u.AvatarUrl,
		Gender:    u.Gender,
		Phone:     u.Phone,
		Email:     u.Email,
		Tags:      tags,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (u *SafeUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasAllTags reports whether every tag in want is present on the user.
func (u *User) HasAllTags(want []string) bool {
	have := make(map[string]struct{}, len(u.Tags))
	for _, t := range u.Tags {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex"`
	Value string `json:"value" form:"value"`
}
