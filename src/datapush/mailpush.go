package datapush

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

// 重试参数
var (
	RetryTimes    = 5
	RetryInterval = 2 * time.Second
)

// Sender 邮件发送接口
type Sender interface {
	Send(e *email.Email) error
}

// SMTPSender 通过TLS SMTP发送
type SMTPSender struct {
	Server   string // host:port，未带端口时使用465
	Username string
	Password string
}

func (s SMTPSender) Send(e *email.Email) error {
	addr := s.Server
	if !strings.Contains(addr, ":") {
		addr += ":465"
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("SMTP地址无效 %s: %w", s.Server, err)
	}

	return e.SendWithTLS(
		addr,
		smtp.PlainAuth("", s.Username, s.Password, host),
		&tls.Config{ServerName: host},
	)
}

// BuildReport 生成带图表附件的报告邮件
func BuildReport(from string, to []string, subject, body string, attachments []string) (*email.Email, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("没有收件人")
	}

	e := email.NewEmail()
	e.From = from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("附件文件不存在: %s", path)
		}
		if _, err := e.AttachFile(path); err != nil {
			return nil, fmt.Errorf("附件添加失败 %s: %w", path, err)
		}
	}
	return e, nil
}

// PushReport 发送报告，失败时重试
func PushReport(sender Sender, e *email.Email) error {
	return retry(func() error { return sender.Send(e) }, RetryTimes, RetryInterval)
}

// 重试函数
func retry(fn func() error, times int, interval time.Duration) error {
	var err error
	for i := 0; i < times; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < times-1 {
			time.Sleep(interval)
		}
	}
	return fmt.Errorf("重试 %d 次后失败: %w", times, err)
}
