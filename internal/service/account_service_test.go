package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"accounts/internal/auth"
	"accounts/internal/entity"
	"accounts/internal/model"
	"accounts/internal/storage"
)

type fakeRepo struct {
	users      map[uint]*entity.User
	roles      map[uint]*entity.Role
	media      map[uint]*entity.Media
	events     []string
	nextUserID uint
	nextMedia  uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      map[uint]*entity.User{},
		roles:      map[uint]*entity.Role{},
		media:      map[uint]*entity.Media{},
		nextUserID: 1,
		nextMedia:  1,
	}
}

func (f *fakeRepo) Transaction(ctx context.Context, fn func(tx model.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *entity.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextUserID
	f.nextUserID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	user, ok := f.users[id]
	if !ok || user.IsDeleted() {
		return gorm.ErrRecordNotFound
	}
	if updates.Email != nil {
		user.Email = *updates.Email
	}
	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.PasswordHash != nil {
		user.PasswordHash = *updates.PasswordHash
	}
	if updates.Status != nil {
		user.Status = *updates.Status
	}
	if updates.RoleID != nil {
		user.RoleID = *updates.RoleID
		user.Role = f.roles[*updates.RoleID]
	}
	if updates.LastLoginAt != nil {
		user.LastLoginAt = updates.LastLoginAt
	}
	return nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id uint) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok || user.IsDeleted() {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email && !u.IsDeleted() {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	for _, u := range f.users {
		if u.ID != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.User, *entity.Meta, error) {
	var out []entity.User
	for _, u := range f.users {
		if !u.IsDeleted() {
			out = append(out, *u)
		}
	}
	return out, &entity.Meta{Total: int64(len(out))}, nil
}

func (f *fakeRepo) ListTrashedUsers(ctx context.Context) ([]entity.User, error) {
	var out []entity.User
	for _, u := range f.users {
		if u.IsDeleted() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetTrashedUserByID(ctx context.Context, id uint) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok || !user.IsDeleted() {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepo) SoftDeleteUser(ctx context.Context, id uint) error {
	user, ok := f.users[id]
	if !ok || user.IsDeleted() {
		return gorm.ErrRecordNotFound
	}
	user.DeletedAt = gorm.DeletedAt{Valid: true}
	return nil
}

func (f *fakeRepo) RestoreUser(ctx context.Context, id uint) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (f *fakeRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeRepo) CreateRole(ctx context.Context, role *entity.Role) error {
	f.roles[role.ID] = role
	return nil
}

func (f *fakeRepo) GetRoleByID(ctx context.Context, id uint, guard string) (*entity.Role, error) {
	role, ok := f.roles[id]
	if !ok || role.GuardName != guard {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeRepo) GetRoleByCode(ctx context.Context, code string) (*entity.Role, error) {
	for _, r := range f.roles {
		if r.Code == code {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListRoles(ctx context.Context) ([]entity.Role, error) {
	var out []entity.Role
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) CreatePermission(ctx context.Context, permission *entity.Permission) error {
	return nil
}

func (f *fakeRepo) GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GrantPermissions(ctx context.Context, role *entity.Role, permissions []entity.Permission) error {
	role.Permissions = append(role.Permissions, permissions...)
	return nil
}

func (f *fakeRepo) CreateMedia(ctx context.Context, media *entity.Media) error {
	media.ID = f.nextMedia
	f.nextMedia++
	f.media[media.ID] = media
	return nil
}

func (f *fakeRepo) GetMediaByUserID(ctx context.Context, userID uint) (*entity.Media, error) {
	for _, m := range f.media {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) DeleteMedia(ctx context.Context, id uint) error {
	if _, ok := f.media[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.media, id)
	return nil
}

func (f *fakeRepo) RecordEvent(ctx context.Context, event string) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRepo) ListAuditLogs(ctx context.Context) ([]entity.AuditLog, error) {
	out := make([]entity.AuditLog, 0, len(f.events))
	for i := len(f.events) - 1; i >= 0; i-- {
		out = append(out, entity.AuditLog{ID: uint(i + 1), Event: f.events[i]})
	}
	return out, nil
}

var _ model.Repository = (*fakeRepo)(nil)

type fakeNotifier struct {
	registered []string
	updated    []string
}

func (n *fakeNotifier) CredentialsRegistered(ctx context.Context, user *entity.User, plaintext string) error {
	n.registered = append(n.registered, plaintext)
	return nil
}

func (n *fakeNotifier) CredentialsUpdated(ctx context.Context, user *entity.User, plaintext string) error {
	n.updated = append(n.updated, plaintext)
	return nil
}

type fakeStorage struct {
	saved    []string
	deleted  []string
	failSave bool
}

func (s *fakeStorage) Save(ctx context.Context, data []byte, opts storage.SaveOptions) (string, error) {
	if s.failSave {
		return "", errors.New("storage unavailable")
	}
	key := fmt.Sprintf("%s/%s.%s", opts.Category, opts.BaseName, opts.Extension)
	s.saved = append(s.saved, key)
	return key, nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

var _ storage.Storage = (*fakeStorage)(nil)

func newTestService(t *testing.T) (*AccountService, *fakeRepo, *fakeNotifier, *fakeStorage) {
	t.Helper()
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	store := &fakeStorage{}
	return NewAccountService(repo, notifier, store), repo, notifier, store
}

func seedRole(repo *fakeRepo, id uint, code string) *entity.Role {
	name := "User"
	if code == entity.RoleCodeAdmin {
		name = "Administrator"
	}
	role := &entity.Role{ID: id, Name: name, Code: code, GuardName: entity.GuardAPI}
	repo.roles[id] = role
	return role
}

func seedUser(t *testing.T, repo *fakeRepo, email, name, password string, role *entity.Role, status bool) *entity.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &entity.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Status:       status,
		RoleID:       role.ID,
		Role:         role,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("成功登录更新最后登录时间并记审计", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeAdmin)
		seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

		user, err := svc.Login(ctx, "admin@nomail.com", "admin")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last_login_at to be set")
		}
		if len(repo.events) != 1 || repo.events[0] != "John logged in" {
			t.Errorf("unexpected audit events: %v", repo.events)
		}
	})

	t.Run("密码错误返回凭证无效且不记审计", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeAdmin)
		seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

		_, err := svc.Login(ctx, "admin@nomail.com", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if len(repo.events) != 0 {
			t.Errorf("expected no audit events, got %v", repo.events)
		}
	})

	t.Run("邮箱未注册返回凭证无效", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Login(ctx, "nobody@nomail.com", "admin")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("密码正确但账户停用返回账户停用", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		user := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, false)

		_, err := svc.Login(ctx, "user@nomail.com", "admin")
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
		if user.LastLoginAt != nil {
			t.Error("last_login_at must not change on rejected login")
		}
	})

	t.Run("停用账户配错误密码仍返回凭证无效", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, false)

		_, err := svc.Login(ctx, "user@nomail.com", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("创建用户带占位头像并发注册邮件", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

		user, err := svc.Register(ctx, actor, entity.UserCreateRequest{
			Email:    "new@nomail.com",
			Name:     "Alice",
			Password: "secret",
			RoleID:   role.ID,
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if !auth.VerifyPassword(user.PasswordHash, "secret") {
			t.Error("stored hash does not match supplied password")
		}
		media, err := repo.GetMediaByUserID(ctx, user.ID)
		if err != nil {
			t.Fatalf("expected placeholder media, got %v", err)
		}
		if media.File != "photos/profile.jpg" {
			t.Errorf("unexpected placeholder file %q", media.File)
		}
		if len(notifier.registered) != 1 || notifier.registered[0] != "secret" {
			t.Errorf("expected one registration mail with plaintext, got %v", notifier.registered)
		}
		if len(repo.events) != 1 || repo.events[0] != `John created user "Alice"` {
			t.Errorf("unexpected audit events: %v", repo.events)
		}
	})

	t.Run("未提供密码时生成随机密码", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

		user, err := svc.Register(ctx, actor, entity.UserCreateRequest{
			Email:  "new@nomail.com",
			Name:   "Alice",
			RoleID: role.ID,
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if len(notifier.registered) != 1 {
			t.Fatalf("expected one registration mail, got %d", len(notifier.registered))
		}
		plaintext := notifier.registered[0]
		if len(plaintext) != 8 {
			t.Errorf("expected 8-char generated password, got %q", plaintext)
		}
		if !auth.VerifyPassword(user.PasswordHash, plaintext) {
			t.Error("generated password does not match stored hash")
		}
	})

	t.Run("邮箱占用时不写入不发信", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

		_, err := svc.Register(ctx, actor, entity.UserCreateRequest{
			Email:    "admin@nomail.com",
			Name:     "Clone",
			Password: "secret",
			RoleID:   role.ID,
		})
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
		if len(repo.users) != 1 {
			t.Errorf("expected no new user row, have %d", len(repo.users))
		}
		if len(notifier.registered) != 0 {
			t.Errorf("expected no mail, got %v", notifier.registered)
		}
	})

	t.Run("角色不存在返回角色未找到", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

		_, err := svc.Register(ctx, actor, entity.UserCreateRequest{
			Email:  "new@nomail.com",
			Name:   "Alice",
			RoleID: 99,
		})
		if !errors.Is(err, ErrRoleNotFound) {
			t.Fatalf("expected ErrRoleNotFound, got %v", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("改密码时恰好发一封凭证更新邮件", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)
		target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)

		newPassword := "changed"
		updated, err := svc.Update(ctx, actor, target.ID, entity.UserUpdateRequest{
			Email:    "user@nomail.com",
			Name:     "Jane",
			Password: &newPassword,
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !auth.VerifyPassword(updated.PasswordHash, "changed") {
			t.Error("stored hash does not match new password")
		}
		if len(notifier.updated) != 1 || notifier.updated[0] != "changed" {
			t.Errorf("expected exactly one update mail, got %v", notifier.updated)
		}
	})

	t.Run("不改密码时不发信", func(t *testing.T) {
		svc, repo, notifier, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)
		target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)

		_, err := svc.Update(ctx, actor, target.ID, entity.UserUpdateRequest{
			Email: "renamed@nomail.com",
			Name:  "Janet",
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(notifier.updated) != 0 {
			t.Errorf("expected no mail, got %v", notifier.updated)
		}
		if target.Email != "renamed@nomail.com" || target.Name != "Janet" {
			t.Errorf("update not applied: %+v", target)
		}
	})

	t.Run("换成他人邮箱被拒绝", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)
		target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)

		_, err := svc.Update(ctx, actor, target.ID, entity.UserUpdateRequest{
			Email: "admin@nomail.com",
			Name:  "Jane",
		})
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("保留自己的邮箱不算占用", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)
		target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)

		if _, err := svc.Update(ctx, actor, target.ID, entity.UserUpdateRequest{
			Email: "user@nomail.com",
			Name:  "Jane Doe",
		}); err != nil {
			t.Fatalf("Update: %v", err)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*AccountService, *fakeRepo, *fakeNotifier, *entity.User) {
		svc, repo, notifier, _ := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		user := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)
		return svc, repo, notifier, user
	}

	t.Run("密码字段要么全给要么全不给", func(t *testing.T) {
		svc, _, _, user := setup(t)

		_, err := svc.UpdateProfile(ctx, user.ID, entity.ProfileUpdateRequest{
			Email:       "user@nomail.com",
			Name:        "Jane",
			NewPassword: "changed",
		})
		if !errors.Is(err, ErrPasswordFieldsRequired) {
			t.Fatalf("expected ErrPasswordFieldsRequired, got %v", err)
		}
	})

	t.Run("两次新密码不一致", func(t *testing.T) {
		svc, _, _, user := setup(t)

		_, err := svc.UpdateProfile(ctx, user.ID, entity.ProfileUpdateRequest{
			Email:              "user@nomail.com",
			Name:               "Jane",
			CurrentPassword:    "admin",
			NewPassword:        "changed",
			ConfirmNewPassword: "different",
		})
		if !errors.Is(err, ErrPasswordMismatch) {
			t.Fatalf("expected ErrPasswordMismatch, got %v", err)
		}
	})

	t.Run("当前密码错误拒绝且不写入", func(t *testing.T) {
		svc, repo, _, user := setup(t)
		before := user.PasswordHash

		_, err := svc.UpdateProfile(ctx, user.ID, entity.ProfileUpdateRequest{
			Email:              "user@nomail.com",
			Name:               "Renamed",
			CurrentPassword:    "wrong",
			NewPassword:        "changed",
			ConfirmNewPassword: "changed",
		})
		if !errors.Is(err, ErrWrongCurrentPassword) {
			t.Fatalf("expected ErrWrongCurrentPassword, got %v", err)
		}
		if user.PasswordHash != before || user.Name != "Jane" {
			t.Error("rejected update must not change the row")
		}
		if len(repo.events) != 0 {
			t.Errorf("expected no audit events, got %v", repo.events)
		}
	})

	t.Run("成功改密码记审计并发一封邮件", func(t *testing.T) {
		svc, repo, notifier, user := setup(t)

		updated, err := svc.UpdateProfile(ctx, user.ID, entity.ProfileUpdateRequest{
			Email:              "user@nomail.com",
			Name:               "Jane",
			CurrentPassword:    "admin",
			NewPassword:        "changed",
			ConfirmNewPassword: "changed",
		})
		if err != nil {
			t.Fatalf("UpdateProfile: %v", err)
		}
		if !auth.VerifyPassword(updated.PasswordHash, "changed") {
			t.Error("stored hash does not match new password")
		}
		if len(notifier.updated) != 1 {
			t.Errorf("expected one update mail, got %d", len(notifier.updated))
		}
		if len(repo.events) != 1 || repo.events[0] != "Jane updated their profile" {
			t.Errorf("unexpected audit events: %v", repo.events)
		}
	})

	t.Run("只改资料不动密码", func(t *testing.T) {
		svc, _, notifier, user := setup(t)
		before := user.PasswordHash

		updated, err := svc.UpdateProfile(ctx, user.ID, entity.ProfileUpdateRequest{
			Email: "jane@nomail.com",
			Name:  "Jane Doe",
		})
		if err != nil {
			t.Fatalf("UpdateProfile: %v", err)
		}
		if updated.PasswordHash != before {
			t.Error("password hash must not change")
		}
		if len(notifier.updated) != 0 {
			t.Errorf("expected no mail, got %v", notifier.updated)
		}
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	adminRole := seedRole(repo, 1, entity.RoleCodeAdmin)
	userRole := seedRole(repo, 2, entity.RoleCodeUser)
	actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", adminRole, true)
	target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", userRole, true)

	updated, err := svc.UpdateRole(ctx, actor, target.ID, adminRole.ID)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated.RoleID != adminRole.ID {
		t.Errorf("expected role %d, got %d", adminRole.ID, updated.RoleID)
	}
	want := `John changed role of "Jane" to "Administrator"`
	if len(repo.events) != 1 || repo.events[0] != want {
		t.Errorf("expected audit %q, got %v", want, repo.events)
	}

	if _, err := svc.UpdateRole(ctx, actor, target.ID, 99); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestToggleStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	role := seedRole(repo, 1, entity.RoleCodeUser)
	actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)
	target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)

	first, err := svc.ToggleStatus(ctx, actor, target.ID)
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if first.Status {
		t.Error("expected account disabled after first toggle")
	}

	second, err := svc.ToggleStatus(ctx, actor, target.ID)
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if !second.Status {
		t.Error("expected account enabled after second toggle")
	}

	want := []string{
		`John disabled account of "Jane"`,
		`John enabled account of "Jane"`,
	}
	if len(repo.events) != 2 || repo.events[0] != want[0] || repo.events[1] != want[1] {
		t.Errorf("expected audits %v, got %v", want, repo.events)
	}
}

func TestDestroyAndRestore(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	role := seedRole(repo, 1, entity.RoleCodeUser)
	actor := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)
	target := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)

	if err := svc.Destroy(ctx, actor, target.ID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, target.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("soft-deleted user must be invisible to active reads")
	}
	if _, err := repo.GetTrashedUserByID(ctx, target.ID); err != nil {
		t.Errorf("soft-deleted user must be in trash: %v", err)
	}

	// 删除后恢复，行原样回来
	restored, err := svc.Restore(ctx, actor, target.ID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.ID != target.ID || restored.Email != "user@nomail.com" {
		t.Errorf("restored row mismatch: %+v", restored)
	}

	want := []string{
		`John deleted user "Jane"`,
		`John restored user "Jane"`,
	}
	if len(repo.events) != 2 || repo.events[0] != want[0] || repo.events[1] != want[1] {
		t.Errorf("expected audits %v, got %v", want, repo.events)
	}

	// 未删除的用户无法恢复
	if _, err := svc.Restore(ctx, actor, target.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfilePhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("替换头像删除旧对象", func(t *testing.T) {
		svc, repo, _, store := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		user := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)
		old := &entity.Media{File: "photos/old.png", UserID: user.ID}
		if err := repo.CreateMedia(ctx, old); err != nil {
			t.Fatalf("CreateMedia: %v", err)
		}

		media, err := svc.UpdateProfilePhoto(ctx, user.ID, []byte("img"), "png")
		if err != nil {
			t.Fatalf("UpdateProfilePhoto: %v", err)
		}
		if len(store.saved) != 1 || media.File != store.saved[0] {
			t.Errorf("expected media to reference saved object, got %q vs %v", media.File, store.saved)
		}
		if len(store.deleted) != 1 || store.deleted[0] != "photos/old.png" {
			t.Errorf("expected old object deleted, got %v", store.deleted)
		}
		current, err := repo.GetMediaByUserID(ctx, user.ID)
		if err != nil || current.ID == old.ID {
			t.Errorf("expected media row replaced, got %+v err %v", current, err)
		}
		if len(repo.events) != 1 || repo.events[0] != "Jane updated their profile photo" {
			t.Errorf("unexpected audit events: %v", repo.events)
		}
	})

	t.Run("占位图不从存储删除", func(t *testing.T) {
		svc, repo, _, store := newTestService(t)
		role := seedRole(repo, 1, entity.RoleCodeUser)
		user := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)
		if err := repo.CreateMedia(ctx, &entity.Media{File: "photos/profile.jpg", UserID: user.ID}); err != nil {
			t.Fatalf("CreateMedia: %v", err)
		}

		if _, err := svc.UpdateProfilePhoto(ctx, user.ID, []byte("img"), "png"); err != nil {
			t.Fatalf("UpdateProfilePhoto: %v", err)
		}
		if len(store.deleted) != 0 {
			t.Errorf("placeholder must never be deleted from storage, got %v", store.deleted)
		}
	})

	t.Run("存储失败时不动数据库", func(t *testing.T) {
		svc, repo, _, store := newTestService(t)
		store.failSave = true
		role := seedRole(repo, 1, entity.RoleCodeUser)
		user := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)
		if err := repo.CreateMedia(ctx, &entity.Media{File: "photos/profile.jpg", UserID: user.ID}); err != nil {
			t.Fatalf("CreateMedia: %v", err)
		}

		if _, err := svc.UpdateProfilePhoto(ctx, user.ID, []byte("img"), "png"); err == nil {
			t.Fatal("expected error from failing storage")
		}
		current, err := repo.GetMediaByUserID(ctx, user.ID)
		if err != nil || current.File != "photos/profile.jpg" {
			t.Errorf("media row must be untouched, got %+v err %v", current, err)
		}
		if len(repo.events) != 0 {
			t.Errorf("expected no audit events, got %v", repo.events)
		}
	})
}

func TestLogoutAndReadAudits(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	role := seedRole(repo, 1, entity.RoleCodeUser)
	actor := seedUser(t, repo, "user@nomail.com", "Jane", "admin", role, true)
	other := seedUser(t, repo, "admin@nomail.com", "John", "admin", role, true)

	if err := svc.Logout(ctx, actor); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.RecordProfileView(ctx, actor); err != nil {
		t.Fatalf("RecordProfileView: %v", err)
	}
	if err := svc.RecordUserView(ctx, actor, other); err != nil {
		t.Fatalf("RecordUserView: %v", err)
	}

	want := []string{
		"Jane logged out",
		"Jane viewed their profile",
		`Jane viewed profile of "John"`,
	}
	if len(repo.events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), repo.events)
	}
	for i := range want {
		if repo.events[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], repo.events[i])
		}
	}
}
