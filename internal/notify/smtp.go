package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"accounts/internal/config"
	"accounts/internal/entity"
)

type smtpNotifier struct {
	addr    string
	from    string
	appName string
	appURL  string
	auth    smtp.Auth
}

func newSMTPNotifier(cfg config.Config) (*smtpNotifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	if host == "" {
		return nil, errors.New("notify: missing SMTP host")
	}
	from := strings.TrimSpace(cfg.SMTPFrom)
	if from == "" {
		return nil, errors.New("notify: missing SMTP sender address")
	}

	var auth smtp.Auth
	if username := strings.TrimSpace(cfg.SMTPUsername); username != "" {
		auth = smtp.PlainAuth("", username, cfg.SMTPPassword, host)
	}

	return &smtpNotifier{
		addr:    net.JoinHostPort(host, strings.TrimSpace(cfg.SMTPPort)),
		from:    from,
		appName: cfg.AppName,
		appURL:  strings.TrimRight(cfg.AppURL, "/"),
		auth:    auth,
	}, nil
}

func (n *smtpNotifier) CredentialsRegistered(ctx context.Context, user *entity.User, plaintext string) error {
	if user == nil {
		return errors.New("notify: user is nil")
	}
	subject := fmt.Sprintf("Welcome to %s", n.appName)
	body := fmt.Sprintf(
		"Welcome %s!\r\n\r\n"+
			"Your account has been created.\r\n\r\n"+
			"Login credentials:\r\n"+
			"  Email: %s\r\n"+
			"  Password: %s\r\n\r\n"+
			"Sign in: %s/login\r\n\r\n"+
			"Thanks,\r\nThe %s team\r\n",
		user.Name, user.Email, plaintext, n.appURL, n.appName)
	return n.send(ctx, user.Email, subject, body)
}

func (n *smtpNotifier) CredentialsUpdated(ctx context.Context, user *entity.User, plaintext string) error {
	if user == nil {
		return errors.New("notify: user is nil")
	}
	subject := fmt.Sprintf("%s account update", n.appName)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Your credentials have been updated.\r\n\r\n"+
			"New credentials:\r\n"+
			"  Email: %s\r\n"+
			"  New password: %s\r\n\r\n"+
			"Sign in: %s/login\r\n\r\n"+
			"Thanks,\r\nThe %s team\r\n",
		user.Name, user.Email, plaintext, n.appURL, n.appName)
	return n.send(ctx, user.Email, subject, body)
}

func (n *smtpNotifier) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		n.from, to, subject, body)
	return smtp.SendMail(n.addr, n.auth, n.from, []string{to}, []byte(msg))
}

var _ Notifier = (*smtpNotifier)(nil)
