package mailer

import (
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/emmanuelwilliam/AITS-group-E/backend/config"
)

// Message 一封待发送的邮件
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer 邮件发送接口
// 发送失败由调用方记录日志，不回滚已提交的业务写入
type Mailer interface {
	Send(msg *Message) error
}

// ── SMTP 实现 ──

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer 基于 gomail 的 SMTP 发送器
func NewSMTPMailer(cfg *config.MailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(msg *Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	return m.dialer.DialAndSend(gm)
}

// ── 日志实现（mail.enabled=false 时的降级通道，开发环境使用）──

type logMailer struct {
	logger *zap.Logger
}

// NewLogMailer 仅把邮件写入日志，不做真实投递
func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(msg *Message) error {
	m.logger.Info("邮件（未启用 SMTP，仅记录）",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// NewFromConfig 根据配置选择发送通道
func NewFromConfig(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}
