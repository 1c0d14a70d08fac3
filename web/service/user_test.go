package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycr/usercenter/database"
	"github.com/ycr/usercenter/database/model"
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/web/entity"
)

func strPtr(s string) *string { return &s }

func register(t *testing.T, s *UserService, account string) int64 {
	t.Helper()
	id, err := s.Register(account, "pass1234", "pass1234")
	require.NoError(t, err)
	return id
}

func TestRegister(t *testing.T) {
	setup(t)
	s := &UserService{}

	id, err := s.Register("alice", "pass1234", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	user, err := s.GetById(id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.StatusActive, user.Status)
	assert.NotEqual(t, "pass1234", user.Password)

	_, err = s.Register("alice", "otherpass", "otherpass")
	assert.True(t, errors.Is(err, common.ErrConflict))

	id2, err := s.Register("bob_2", "pass1234", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2)
}

func TestRegisterValidation(t *testing.T) {
	setup(t)
	s := &UserService{}

	tests := []struct {
		name                               string
		account, password, confirmPassword string
	}{
		{"blank account", "", "pass1234", "pass1234"},
		{"blank password", "alice", " ", "pass1234"},
		{"blank confirm", "alice", "pass1234", ""},
		{"short account", "abc", "pass1234", "pass1234"},
		{"short password", "alice", "pass123", "pass123"},
		{"special characters", "ali ce", "pass1234", "pass1234"},
		{"special characters 2", "alice!", "pass1234", "pass1234"},
		{"mismatch", "alice", "pass1234", "pass12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(tt.account, tt.password, tt.confirmPassword)
			assert.Equal(t, common.CodeParams, common.CodeOf(err))
		})
	}
}

func TestRegisterAfterSoftDelete(t *testing.T) {
	setup(t)
	s := &UserService{}

	id := register(t, s, "alice")
	ok, err := s.DeleteById(id, true)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Register("alice", "pass1234", "pass1234")
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	setup(t)
	s := &UserService{}
	register(t, s, "alice")

	safe, err := s.Login("alice", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, "alice", safe.Account)
	assert.Equal(t, int64(1), safe.Id)

	_, wrongPassword := s.Login("alice", "wrongpass")
	_, noAccount := s.Login("nobody", "pass1234")
	assert.Equal(t, common.CodeLoginFailed, common.CodeOf(wrongPassword))
	assert.Equal(t, common.CodeLoginFailed, common.CodeOf(noAccount))
	assert.Equal(t, wrongPassword.Error(), noAccount.Error())

	_, err = s.Login("alice", "")
	assert.Equal(t, common.CodeParams, common.CodeOf(err))
}

func TestLoginRejectsDisabledAndDeleted(t *testing.T) {
	setup(t)
	s := &UserService{}
	admin := &model.SafeUser{Id: 99, Role: model.RoleAdmin}

	disabled := register(t, s, "carol")
	status := model.StatusDisabled
	_, err := s.UpdateUser(&entity.UserUpdateForm{Id: disabled, Status: &status}, admin)
	require.NoError(t, err)
	_, err = s.Login("carol", "pass1234")
	assert.Equal(t, common.CodeLoginFailed, common.CodeOf(err))

	deleted := register(t, s, "dave")
	_, err = s.DeleteById(deleted, true)
	require.NoError(t, err)
	_, err = s.Login("dave", "pass1234")
	assert.Equal(t, common.CodeLoginFailed, common.CodeOf(err))
}

func TestGetSafeView(t *testing.T) {
	s := &UserService{}
	u := &model.User{Id: 3, Account: "alice", Password: "digest", Tags: []string{"go"}}
	safe := s.GetSafeView(u)
	assert.Equal(t, "alice", safe.Account)
	assert.Equal(t, "digest", u.Password)
	assert.Nil(t, s.GetSafeView(nil))
}

func TestSearchByUsername(t *testing.T) {
	setup(t)
	s := &UserService{}
	admin := &model.SafeUser{Id: 99, Role: model.RoleAdmin}

	for _, account := range []string{"alice", "alina", "bob_"} {
		id := register(t, s, account)
		name := account + " smith"
		_, err := s.UpdateUser(&entity.UserUpdateForm{Id: id, Username: &name}, admin)
		require.NoError(t, err)
	}

	_, err := s.SearchByUsername("", false)
	assert.True(t, errors.Is(err, common.ErrNoAuth))

	all, err := s.SearchByUsername("", true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ali, err := s.SearchByUsername("ali", true)
	require.NoError(t, err)
	require.Len(t, ali, 2)
	assert.Equal(t, "alice", ali[0].Account)
	assert.Equal(t, "alina", ali[1].Account)

	_, err = s.DeleteById(ali[0].Id, true)
	require.NoError(t, err)
	ali, err = s.SearchByUsername("ali", true)
	require.NoError(t, err)
	assert.Len(t, ali, 1)
}

func TestSearchByTags(t *testing.T) {
	setup(t)
	s := &UserService{}
	admin := &model.SafeUser{Id: 99, Role: model.RoleAdmin}

	tagsOf := map[string][]string{
		"alice": {"go", "java"},
		"bobby": {"go"},
		"carol": {"python", "c++"},
		"dan_1": {"golang"},
		"erin1": {"a<b"},
	}
	for _, account := range []string{"alice", "bobby", "carol", "dan_1", "erin1"} {
		id := register(t, s, account)
		tags := tagsOf[account]
		_, err := s.UpdateUser(&entity.UserUpdateForm{Id: id, Tags: &tags}, admin)
		require.NoError(t, err)
	}

	_, err := s.SearchByTags(nil)
	assert.Equal(t, common.CodeParams, common.CodeOf(err))
	_, err = s.SearchByTags([]string{" ", ""})
	assert.Equal(t, common.CodeParams, common.CodeOf(err))

	goUsers, err := s.SearchByTags([]string{"go"})
	require.NoError(t, err)
	require.Len(t, goUsers, 2)
	assert.Equal(t, "alice", goUsers[0].Account)
	assert.Equal(t, "bobby", goUsers[1].Account)

	both, err := s.SearchByTags([]string{"java", "go"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "alice", both[0].Account)

	plus, err := s.SearchByTags([]string{"c++"})
	require.NoError(t, err)
	require.Len(t, plus, 1)
	assert.Equal(t, "carol", plus[0].Account)

	escaped, err := s.SearchByTags([]string{"a<b"})
	require.NoError(t, err)
	require.Len(t, escaped, 1)
	assert.Equal(t, "erin1", escaped[0].Account)

	wildcard, err := s.SearchByTags([]string{"g%"})
	require.NoError(t, err)
	assert.Empty(t, wildcard)

	none, err := s.SearchByTags([]string{"rust"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateUser(t *testing.T) {
	setup(t)
	s := &UserService{}
	aliceId := register(t, s, "alice")
	bobId := register(t, s, "bobby")
	alice := &model.SafeUser{Id: aliceId, Role: model.RoleUser}
	admin := &model.SafeUser{Id: 99, Role: model.RoleAdmin}

	n, err := s.UpdateUser(&entity.UserUpdateForm{Id: aliceId, Username: strPtr("Alice"), Email: strPtr("a@example.com")}, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	u, err := s.GetById(aliceId)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
	assert.Equal(t, "a@example.com", u.Email)

	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: bobId, Username: strPtr("hacked")}, alice)
	assert.True(t, errors.Is(err, common.ErrNoAuth))

	n, err = s.UpdateUser(&entity.UserUpdateForm{Id: bobId, Username: strPtr("Bob")}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	role := model.RoleAdmin
	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: aliceId, Role: &role}, alice)
	assert.True(t, errors.Is(err, common.ErrNoAuth))

	n, err = s.UpdateUser(&entity.UserUpdateForm{Id: aliceId, Role: &role}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	u, err = s.GetById(aliceId)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "Alice", u.Username)
}

func TestUpdateUserValidation(t *testing.T) {
	setup(t)
	s := &UserService{}
	id := register(t, s, "alice")
	admin := &model.SafeUser{Id: 99, Role: model.RoleAdmin}

	_, err := s.UpdateUser(&entity.UserUpdateForm{Id: 0, Username: strPtr("x")}, admin)
	assert.Equal(t, common.CodeParams, common.CodeOf(err))

	_, err = s.UpdateUser(nil, admin)
	assert.Equal(t, common.CodeParams, common.CodeOf(err))

	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: id, Username: strPtr("x")}, nil)
	assert.Equal(t, common.CodeNotLogin, common.CodeOf(err))

	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: id}, admin)
	assert.Equal(t, common.CodeParams, common.CodeOf(err))

	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: 404, Username: strPtr("x")}, admin)
	assert.Equal(t, common.CodeParams, common.CodeOf(err))

	bad := model.Role(7)
	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: id, Role: &bad}, admin)
	assert.Equal(t, common.CodeParams, common.CodeOf(err))
}

func TestUpdateUserClearsTags(t *testing.T) {
	setup(t)
	s := &UserService{}
	id := register(t, s, "alice")
	me := &model.SafeUser{Id: id}

	tags := []string{"go"}
	_, err := s.UpdateUser(&entity.UserUpdateForm{Id: id, Tags: &tags}, me)
	require.NoError(t, err)

	var empty []string
	_, err = s.UpdateUser(&entity.UserUpdateForm{Id: id, Tags: &empty}, me)
	require.NoError(t, err)

	u, err := s.GetById(id)
	require.NoError(t, err)
	assert.Empty(t, u.Tags)
}

func TestDeleteById(t *testing.T) {
	setup(t)
	s := &UserService{}
	id := register(t, s, "alice")

	_, err := s.DeleteById(id, false)
	assert.True(t, errors.Is(err, common.ErrNoAuth))

	for _, bad := range []int64{0, -1} {
		_, err = s.DeleteById(bad, true)
		assert.Equal(t, common.CodeParams, common.CodeOf(err))
	}

	ok, err := s.DeleteById(id, true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteById(id, true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeleteById(12345, true)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetById(id)
	assert.True(t, database.IsNotFound(err))

	// the row is kept, only marked deleted
	var count int64
	require.NoError(t, database.GetDB().Unscoped().Model(&model.User{}).Where("id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetAdmin(t *testing.T) {
	setup(t)
	s := &UserService{}

	id, err := s.SetAdmin("root_admin", "pass1234")
	require.NoError(t, err)
	u, err := s.GetById(id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	existing := register(t, s, "alice")
	id, err = s.SetAdmin("alice", "")
	require.NoError(t, err)
	assert.Equal(t, existing, id)
	u, err = s.GetById(id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	_, err = s.SetAdmin("new_admin", "short")
	assert.Equal(t, common.CodeParams, common.CodeOf(err))
}

func TestSearchByUsernameKeepsSurroundingSpaces(t *testing.T) {
	setup(t)
	s := &UserService{}
	admin := &model.SafeUser{Id: 99, Role: model.RoleAdmin}

	for account, name := range map[string]string{"annie": "ann lee", "annlee": "annlee"} {
		id := register(t, s, account)
		_, err := s.UpdateUser(&entity.UserUpdateForm{Id: id, Username: strPtr(name)}, admin)
		require.NoError(t, err)
	}

	spaced, err := s.SearchByUsername("ann ", true)
	require.NoError(t, err)
	require.Len(t, spaced, 1)
	assert.Equal(t, "annie", spaced[0].Account)

	blank, err := s.SearchByUsername("   ", true)
	require.NoError(t, err)
	assert.Len(t, blank, 2)
}
