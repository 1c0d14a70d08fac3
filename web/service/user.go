package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ycr/usercenter/database"
	"github.com/ycr/usercenter/database/model"
	"github.com/ycr/usercenter/util/common"
	"github.com/ycr/usercenter/util/crypto"
	"github.com/ycr/usercenter/web/entity"

	"github.com/goccy/go-json"
)

const (
	MinAccountLength  = 4
	MinPasswordLength = 8
)

var accountPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// UserService implements registration, login and the account CRUD rules.
type UserService struct{}

// Register creates an ordinary, active account and returns its id.
//
// The uniqueness check and the insert are separate statements; two
// concurrent registrations of one account can both pass the check. The
// partial unique index then rejects the second insert, which is reported
// as a conflict as well.
func (s *UserService) Register(account, password, confirmPassword string) (int64, error) {
	if entity.IsAnyBlank(account, password, confirmPassword) {
		return 0, common.Validation("account and passwords are required")
	}
	if utf8.RuneCountInString(account) < MinAccountLength {
		return 0, common.Validation("account must be at least %d characters", MinAccountLength)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return 0, common.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if !accountPattern.MatchString(account) {
		return 0, common.Validation("account may only contain letters, digits and underscores")
	}
	if password != confirmPassword {
		return 0, common.Validation("passwords do not match")
	}

	db := database.GetDB()
	var count int64
	err := db.Model(model.User{}).
		Where("account = ?", account).
		Count(&count).
		Error
	if err != nil {
		return 0, common.Internal(err)
	}
	if count > 0 {
		return 0, common.Conflict("account already exists")
	}

	hashedPassword, err := crypto.HashPassword(password)
	if err != nil {
		return 0, common.Internal(err)
	}
	user := &model.User{
		Account:  account,
		Password: hashedPassword,
		Role:     model.RoleUser,
		Status:   model.StatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return 0, common.Conflict("account already exists")
		}
		return 0, common.Internal(err)
	}
	return user.Id, nil
}

// Login verifies the credentials of an active account. Unknown accounts,
// wrong passwords and disabled accounts fail identically.
func (s *UserService) Login(account, password string) (*model.SafeUser, error) {
	if entity.IsAnyBlank(account, password) {
		return nil, common.Validation("account and password are required")
	}

	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("account = ? AND status = ?", account, model.StatusActive).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, common.ErrLoginFailed
	} else if err != nil {
		return nil, common.Internal(err)
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, common.ErrLoginFailed
	}
	return s.GetSafeView(user), nil
}

// GetSafeView strips the password digest from user.
func (s *UserService) GetSafeView(user *model.User) *model.SafeUser {
	return user.Safe()
}

func (s *UserService) GetById(id int64) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SearchByUsername lists users whose username contains pattern; an empty
// pattern lists everyone. Administrators only.
func (s *UserService) SearchByUsername(pattern string, callerIsAdmin bool) ([]*model.SafeUser, error) {
	if !callerIsAdmin {
		return nil, common.NoAuth("administrator role required")
	}

	db := database.GetDB()
	query := db.Model(model.User{})
	if strings.TrimSpace(pattern) != "" {
		query = query.Where("username LIKE ?", "%"+pattern+"%")
	}
	var users []*model.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, common.Internal(err)
	}
	return s.safeViews(users), nil
}

// SearchByTags lists users carrying every tag in tags.
//
// Each tag narrows the query with a LIKE on its JSON encoding, matching
// how the column is serialized; candidates are then checked against their
// decoded tag set since LIKE wildcards inside a tag may over-match.
func (s *UserService) SearchByTags(tags []string) ([]*model.SafeUser, error) {
	wanted := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) != "" {
			wanted = append(wanted, tag)
		}
	}
	if len(wanted) == 0 {
		return nil, common.Validation("tag list is empty")
	}

	db := database.GetDB()
	query := db.Model(model.User{})
	for _, tag := range wanted {
		needle, err := json.Marshal(tag)
		if err != nil {
			return nil, common.Internal(err)
		}
		query = query.Where("tags LIKE ?", "%"+string(needle)+"%")
	}
	var candidates []*model.User
	if err := query.Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, common.Internal(err)
	}

	users := make([]*model.User, 0, len(candidates))
	for _, u := range candidates {
		if u.HasAllTags(wanted) {
			users = append(users, u)
		}
	}
	return s.safeViews(users), nil
}

// UpdateUser writes the supplied fields of form and returns the number of
// rows changed. Ordinary users may only edit their own profile; role and
// status changes need an administrator.
func (s *UserService) UpdateUser(form *entity.UserUpdateForm, acting *model.SafeUser) (int64, error) {
	if form == nil || form.Id <= 0 {
		return 0, common.Validation("user id must be positive")
	}
	if acting == nil {
		return 0, common.ErrNotLogin
	}
	if !acting.IsAdmin() {
		if form.Id != acting.Id {
			return 0, common.NoAuth("cannot update another user")
		}
		if form.TouchesPrivileges() {
			return 0, common.NoAuth("administrator role required to change role or status")
		}
	}
	if form.Role != nil && !form.Role.IsValid() {
		return 0, common.Validation("invalid role %d", *form.Role)
	}
	if form.Status != nil && !form.Status.IsValid() {
		return 0, common.Validation("invalid status %d", *form.Status)
	}

	update := &model.User{Id: form.Id}
	cols := form.Apply(update)
	if len(cols) == 0 {
		return 0, common.Validation("nothing to update")
	}

	if _, err := s.GetById(form.Id); database.IsNotFound(err) {
		return 0, common.Validation("user %d does not exist", form.Id)
	} else if err != nil {
		return 0, common.Internal(err)
	}

	db := database.GetDB()
	result := db.Model(update).Select(cols).Updates(update)
	if result.Error != nil {
		return 0, common.Internal(result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteById soft deletes the user. It reports false when no live row had
// that id. Administrators only.
func (s *UserService) DeleteById(id int64, callerIsAdmin bool) (bool, error) {
	if !callerIsAdmin {
		return false, common.NoAuth("administrator role required")
	}
	if id <= 0 {
		return false, common.Validation("user id must be positive")
	}

	db := database.GetDB()
	result := db.Delete(&model.User{}, id)
	if result.Error != nil {
		return false, common.Internal(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetAdmin makes account an administrator, registering it first when it
// does not exist yet.
func (s *UserService) SetAdmin(account string, password string) (int64, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("account = ?", account).
		First(user).
		Error
	if database.IsNotFound(err) {
		id, err := s.Register(account, password, password)
		if err != nil {
			return 0, err
		}
		user.Id = id
	} else if err != nil {
		return 0, common.Internal(err)
	}

	err = db.Model(model.User{}).
		Where("id = ?", user.Id).
		Update("role", model.RoleAdmin).
		Error
	if err != nil {
		return 0, common.Internal(err)
	}
	return user.Id, nil
}

func (s *UserService) safeViews(users []*model.User) []*model.SafeUser {
	out := make([]*model.SafeUser, 0, len(users))
	for _, u := range users {
		out = append(out, s.GetSafeView(u))
	}
	return out
}
