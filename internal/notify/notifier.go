// Package notify delivers the one-time credential mails. Dispatch is
// best-effort and always happens after the owning transaction has committed;
// a delivery failure is logged and never surfaces to the HTTP caller.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"accounts/internal/config"
	"accounts/internal/entity"
)

const (
	DriverSMTP = "smtp"
	DriverLog  = "log"
)

// Notifier 发送凭证通知。明文密码只在这里出现一次，绝不落库。
type Notifier interface {
	CredentialsRegistered(ctx context.Context, user *entity.User, plaintext string) error
	CredentialsUpdated(ctx context.Context, user *entity.User, plaintext string) error
}

// NewNotifier 根据配置实例化通知驱动。
func NewNotifier(cfg config.Config) (Notifier, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.NotifyDriver))
	switch driver {
	case "", DriverLog:
		return &logNotifier{}, nil
	case DriverSMTP:
		return newSMTPNotifier(cfg)
	default:
		return nil, fmt.Errorf("unsupported notify driver: %s", cfg.NotifyDriver)
	}
}

// logNotifier 仅记录日志，用于开发环境。密码不打日志。
type logNotifier struct{}

func (n *logNotifier) CredentialsRegistered(ctx context.Context, user *entity.User, plaintext string) error {
	if user == nil {
		return nil
	}
	logrus.WithField("email", user.Email).Info("credentials registration notification (log driver, mail suppressed)")
	return nil
}

func (n *logNotifier) CredentialsUpdated(ctx context.Context, user *entity.User, plaintext string) error {
	if user == nil {
		return nil
	}
	logrus.WithField("email", user.Email).Info("credentials update notification (log driver, mail suppressed)")
	return nil
}

var _ Notifier = (*logNotifier)(nil)
