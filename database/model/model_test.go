package model

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser() *User {
	return &User{
		Id:        7,
		Account:   "alice",
		Password:  "$2a$10$digest",
		Username:  "Alice",
		AvatarUrl: "https://img.example/a.png",
		Gender:    1,
		Phone:     "123",
		Email:     "alice@example.com",
		Tags:      []string{"go", "java"},
		Role:      RoleAdmin,
		Status:    StatusActive,
		CreatedAt: time.Date(2024, 4, 11, 11, 27, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 4, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestSafeOmitsDigest(t *testing.T) {
	u := newUser()
	safe := u.Safe()

	data, err := json.Marshal(safe)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), u.Password)

	assert.Equal(t, u.Id, safe.Id)
	assert.Equal(t, u.Account, safe.Account)
	assert.Equal(t, u.Email, safe.Email)
	assert.Equal(t, u.Tags, safe.Tags)
	assert.Equal(t, u.Role, safe.Role)
	assert.Equal(t, u.UpdatedAt, safe.UpdatedAt)
}

func TestSafeDoesNotAliasEntity(t *testing.T) {
	u := newUser()
	safe := u.Safe()
	safe.Tags[0] = "rust"
	assert.Equal(t, "go", u.Tags[0])
	assert.Equal(t, "$2a$10$digest", u.Password)
}

func TestSafeNil(t *testing.T) {
	var u *User
	assert.Nil(t, u.Safe())
}

func TestUserJSONHidesPassword(t *testing.T) {
	data, err := json.Marshal(newUser())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "$2a$10$digest")
}

func TestIsAdmin(t *testing.T) {
	var nobody *SafeUser
	assert.False(t, nobody.IsAdmin())
	assert.False(t, (&SafeUser{Role: RoleUser}).IsAdmin())
	assert.True(t, (&SafeUser{Role: RoleAdmin}).IsAdmin())
}

func TestRoleAndStatus(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role(2).IsValid())
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "unknown", Role(-1).String())

	assert.True(t, StatusDisabled.IsValid())
	assert.False(t, Status(9).IsValid())
}

func TestHasAllTags(t *testing.T) {
	u := newUser()
	assert.True(t, u.HasAllTags([]string{"go"}))
	assert.True(t, u.HasAllTags([]string{"java", "go"}))
	assert.False(t, u.HasAllTags([]string{"go", "python"}))
	assert.True(t, u.HasAllTags(nil))
}

func TestSafeUserGobRoundTrip(t *testing.T) {
	values := map[any]any{"USER_LOGIN_STATE": *newUser().Safe()}

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(values))

	var decoded map[any]any
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))
	got, ok := decoded["USER_LOGIN_STATE"].(SafeUser)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Account)
	assert.Equal(t, RoleAdmin, got.Role)
}
