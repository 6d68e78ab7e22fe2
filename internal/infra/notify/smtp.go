// Package notify mails each recipient the share they owe.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	domsplit "example.com/divide-account/internal/domain/split"
)

// DefaultTimeout bounds one SMTP conversation when the caller's context has
// no earlier deadline.
const DefaultTimeout = 10 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPConfig struct {
	Addr     string
	From     string
	Username string
	Password string
	Timeout  time.Duration
}

type SMTPNotifier struct {
	cfg  SMTPConfig
	auth smtp.Auth
	send sendFunc
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	n := &SMTPNotifier{cfg: cfg}
	n.send = n.sendMail
	if cfg.Username != "" {
		n.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, hostOf(cfg.Addr))
	}
	return n
}

func (n *SMTPNotifier) NotifyShare(ctx context.Context, share domsplit.Share, alloc domsplit.Allocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(n.cfg.From, share, alloc)
	if err := n.send(ctx, n.cfg.Addr, n.auth, n.cfg.From, []string{share.Email}, msg); err != nil {
		return fmt.Errorf("send share to %s: %w", share.Email, err)
	}
	return nil
}

// sendMail follows smtp.SendMail but dials with ctx and puts a deadline on
// the connection, so a server that stops answering cannot hold the caller.
func (n *SMTPNotifier) sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	// Cancellation without a deadline still has to unblock pending I/O.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()
	defer func() {
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		}
	}()

	host := hostOf(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func buildMessage(from string, share domsplit.Share, alloc domsplit.Allocation) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", share.Email)
	b.WriteString("Subject: Your share of the shopping list\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your share: %d\r\n", share.Amount)
	fmt.Fprintf(&b, "List total: %d, split among %d people.\r\n", alloc.Total, len(alloc.Shares))
	return b.Bytes()
}
