package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"accounts/internal/auth"
	"accounts/internal/entity"
	"accounts/internal/model"
	"accounts/internal/notify"
	"accounts/internal/storage"
)

// dummyPasswordHash 在邮箱未命中时仍走一次 bcrypt 校验，避免通过响应
// 时间差探测邮箱是否注册。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const generatedPasswordLength = 8

const placeholderPhoto = "photos/profile.jpg"

// AccountService 承载账户生命周期的全部编排：每个变更操作在单个事务内
// 完成存储写入与审计追加，通知派发严格在提交之后，失败只记日志、
// 不回滚也不影响响应。
type AccountService struct {
	repo     model.Repository
	notifier notify.Notifier
	storage  storage.Storage
}

// NewAccountService 创建账户服务。
func NewAccountService(repo model.Repository, notifier notify.Notifier, store storage.Storage) *AccountService {
	return &AccountService{
		repo:     repo,
		notifier: notifier,
		storage:  store,
	}
}

// Login authenticates by email and password. The password is verified even
// when the account turns out to be disabled, so the caller can distinguish
// "wrong credentials" from "valid credentials, disabled account".
func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.VerifyPassword(dummyPasswordHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Status {
		return nil, ErrAccountDisabled
	}

	now := time.Now().UTC()
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.UpdateUser(ctx, user.ID, entity.UserUpdates{LastLoginAt: &now}); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s logged in", user.Name))
	})
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	return user, nil
}

// Logout 记录退出事件。Token 无服务端失效机制，真正的"登出"由
// 处理器清除 Cookie 完成。
func (s *AccountService) Logout(ctx context.Context, actor *entity.User) error {
	if actor == nil {
		return nil
	}
	return s.repo.RecordEvent(ctx, fmt.Sprintf("%s logged out", actor.Name))
}

// Register creates a user with a hashed password, the default profile photo
// placeholder and a role scoped to the api guard. When no password is given
// a random one is generated. The registration mail carrying the one-time
// plaintext goes out only after the transaction has committed.
func (s *AccountService) Register(ctx context.Context, actor *entity.User, input entity.UserCreateRequest) (*entity.User, error) {
	email := strings.TrimSpace(input.Email)

	taken, err := s.repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	role, err := s.repo.GetRoleByID(ctx, input.RoleID, entity.GuardAPI)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	plaintext := strings.TrimSpace(input.Password)
	if plaintext == "" {
		plaintext, err = auth.RandomPassword(generatedPasswordLength)
		if err != nil {
			return nil, err
		}
	}
	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Status:       true,
		RoleID:       role.ID,
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.CreateMedia(ctx, &entity.Media{File: placeholderPhoto, UserID: user.ID}); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s created user %q", actorName(actor), user.Name))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	user.Role = role
	s.notifyRegistered(ctx, user, plaintext)
	return user, nil
}

// Update 管理端更新：邮箱唯一性排除当前行后重查；提供了新密码时重新
// 哈希，并在提交后发送一次（且仅一次）凭证更新邮件。
func (s *AccountService) Update(ctx context.Context, actor *entity.User, id uint, input entity.UserUpdateRequest) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	taken, err := s.repo.EmailTaken(ctx, email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	oldName := user.Name
	name := strings.TrimSpace(input.Name)
	updates := entity.UserUpdates{Email: &email, Name: &name}

	var plaintext string
	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		plaintext = strings.TrimSpace(*input.Password)
		hash, err := auth.HashPassword(plaintext)
		if err != nil {
			return nil, err
		}
		updates.PasswordHash = &hash
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.UpdateUser(ctx, user.ID, updates); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s updated user %q", actorName(actor), oldName))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	updated, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if plaintext != "" {
		s.notifyUpdated(ctx, updated, plaintext)
	}
	return updated, nil
}

// UpdateProfile 自助更新。请求中出现任一密码字段时三个字段都必填，
// 且当前密码必须先校验通过；校验失败时不发生任何写入。
func (s *AccountService) UpdateProfile(ctx context.Context, id uint, input entity.ProfileUpdateRequest) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changingPassword := input.CurrentPassword != "" || input.NewPassword != "" || input.ConfirmNewPassword != ""
	var plaintext string
	var passwordHash string
	if changingPassword {
		if input.CurrentPassword == "" || input.NewPassword == "" || input.ConfirmNewPassword == "" {
			return nil, ErrPasswordFieldsRequired
		}
		if input.NewPassword != input.ConfirmNewPassword {
			return nil, ErrPasswordMismatch
		}
		if !auth.VerifyPassword(user.PasswordHash, input.CurrentPassword) {
			return nil, ErrWrongCurrentPassword
		}
		plaintext = input.NewPassword
		passwordHash, err = auth.HashPassword(plaintext)
		if err != nil {
			return nil, err
		}
	}

	email := strings.TrimSpace(input.Email)
	taken, err := s.repo.EmailTaken(ctx, email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	name := strings.TrimSpace(input.Name)
	updates := entity.UserUpdates{Email: &email, Name: &name}
	if changingPassword {
		updates.PasswordHash = &passwordHash
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.UpdateUser(ctx, user.ID, updates); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s updated their profile", name))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	updated, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if plaintext != "" {
		s.notifyUpdated(ctx, updated, plaintext)
	}
	return updated, nil
}

// UpdateProfilePhoto replaces the user's single profile photo: the new
// object is written first, then one transaction swaps the media row and
// appends the audit entry, and only after commit is the old object removed
// from storage. A failed transaction cleans up the freshly written object.
func (s *AccountService) UpdateProfilePhoto(ctx context.Context, id uint, data []byte, extension string) (*entity.Media, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	old, err := s.repo.GetMediaByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		old = nil
	}

	key, err := s.storage.Save(ctx, data, storage.SaveOptions{
		Category:  "photos",
		BaseName:  uuid.NewString(),
		Extension: extension,
	})
	if err != nil {
		return nil, err
	}

	media := &entity.Media{File: key, UserID: user.ID}
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if old != nil {
			if err := tx.DeleteMedia(ctx, old.ID); err != nil {
				return err
			}
		}
		if err := tx.CreateMedia(ctx, media); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s updated their profile photo", user.Name))
	})
	if err != nil {
		if cleanupErr := s.storage.Delete(ctx, key); cleanupErr != nil {
			logrus.WithError(cleanupErr).WithField("key", key).Warn("failed to clean up orphaned photo")
		}
		return nil, err
	}

	// 占位图是共享对象，不随用户头像替换而删除。
	if old != nil && old.File != placeholderPhoto {
		if err := s.storage.Delete(ctx, old.File); err != nil {
			logrus.WithError(err).WithField("key", old.File).Warn("failed to delete previous photo object")
		}
	}
	return media, nil
}

// UpdateRole 替换用户唯一的角色归属。角色必须存在且属于 api 守卫上下文。
func (s *AccountService) UpdateRole(ctx context.Context, actor *entity.User, id uint, roleID uint) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	role, err := s.repo.GetRoleByID(ctx, roleID, entity.GuardAPI)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.UpdateUser(ctx, user.ID, entity.UserUpdates{RoleID: &role.ID}); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s changed role of %q to %q", actorName(actor), user.Name, role.Name))
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetUserByID(ctx, user.ID)
}

// ToggleStatus 翻转启用开关。已签发的 Token 不动，真正的拦截发生在
// 下一次请求经过会话中间件时。
func (s *AccountService) ToggleStatus(ctx context.Context, actor *entity.User, id uint) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	newStatus := !user.Status
	verb := "disabled"
	if newStatus {
		verb = "enabled"
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.UpdateUser(ctx, user.ID, entity.UserUpdates{Status: &newStatus}); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s %s account of %q", actorName(actor), verb, user.Name))
	})
	if err != nil {
		return nil, err
	}

	user.Status = newStatus
	return user, nil
}

// Destroy 软删除：行保留 id 与角色引用，可经 Restore 原样恢复。
func (s *AccountService) Destroy(ctx context.Context, actor *entity.User, id uint) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.SoftDeleteUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s deleted user %q", actorName(actor), user.Name))
	})
}

// Restore 恢复软删除的用户。
func (s *AccountService) Restore(ctx context.Context, actor *entity.User, id uint) (*entity.User, error) {
	trashed, err := s.repo.GetTrashedUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.RestoreUser(ctx, trashed.ID); err != nil {
			return err
		}
		return tx.RecordEvent(ctx, fmt.Sprintf("%s restored user %q", actorName(actor), trashed.Name))
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetUserByID(ctx, trashed.ID)
}

// RecordProfileView 记录本人查看资料的审计事件。
func (s *AccountService) RecordProfileView(ctx context.Context, actor *entity.User) error {
	if actor == nil {
		return nil
	}
	return s.repo.RecordEvent(ctx, fmt.Sprintf("%s viewed their profile", actor.Name))
}

// RecordUserView 记录查看他人资料的审计事件。
func (s *AccountService) RecordUserView(ctx context.Context, actor, target *entity.User) error {
	if actor == nil || target == nil {
		return nil
	}
	return s.repo.RecordEvent(ctx, fmt.Sprintf("%s viewed profile of %q", actor.Name, target.Name))
}

// notifyRegistered 提交后派发注册邮件，失败只记日志。
func (s *AccountService) notifyRegistered(ctx context.Context, user *entity.User, plaintext string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CredentialsRegistered(ctx, user, plaintext); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Error("failed to send registration mail")
	}
}

// notifyUpdated 提交后派发凭证更新邮件，失败只记日志。
func (s *AccountService) notifyUpdated(ctx context.Context, user *entity.User, plaintext string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CredentialsUpdated(ctx, user, plaintext); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Error("failed to send credentials update mail")
	}
}

func actorName(actor *entity.User) string {
	if actor == nil {
		return "system"
	}
	return actor.Name
}
