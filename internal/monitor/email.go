package monitor

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/wonny/fundsim/pkg/config"
	"github.com/wonny/fundsim/pkg/logger"
)

// EmailNotifier delivers notifications over SMTP.
type EmailNotifier struct {
	cfg    config.MailConfig
	logger *logger.Logger
}

// NewEmailNotifier creates an SMTP notifier from mail config.
func NewEmailNotifier(cfg config.MailConfig, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: log}
}

// Notify sends one advice mail.
func (e *EmailNotifier) Notify(ctx context.Context, key Key, n Notification) error {
	subject := fmt.Sprintf("[fundsim] %s %s (%s)", strings.ToUpper(string(n.Advice.Action)), n.FundName, n.FundCode)

	body := fmt.Sprintf(
		"Fund: %s (%s)\r\nAction: %s\r\nEstimated NAV: %.4f\r\nLookback return: %.2f%%\r\nReference NAV: %.4f on %s\r\n",
		n.FundName, n.FundCode, n.Advice.Action,
		n.Advice.EstimatedValue, n.Advice.LookbackReturn,
		n.Advice.ReferenceValue, n.Advice.ReferenceDate.Format("2006-01-02"),
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.cfg.From, e.cfg.To, subject, body)

	addr := fmt.Sprintf("%s:%s", e.cfg.Host, e.cfg.Port)
	var auth smtp.Auth
	if e.cfg.User != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.cfg.Password, e.cfg.Host)
	}

	to := strings.Split(e.cfg.To, ",")
	if err := smtp.SendMail(addr, auth, e.cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("send mail failed: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"key":       string(key),
		"fund_code": n.FundCode,
		"action":    n.Advice.Action,
	}).Info("Notification sent")
	return nil
}
