// Package mailer delivers visibility reports over SMTP.
package mailer

import (
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/natalnetwork/iss-horizon/internal/config"
)

// Configuration errors.
var (
	ErrNoHost     = errors.New("SMTP_HOST is required")
	ErrBadTLSMode = errors.New("SMTP_TLS_MODE must be 'ssl' or 'starttls'")
)

// Send delivers a report email. The plain-text body is always set; when
// htmlBody is non-empty the message goes out as multipart/alternative.
func Send(cfg config.SMTP, subject, body, toAddr, htmlBody string) error {
	if cfg.Host == "" {
		return ErrNoHost
	}
	if cfg.TLSMode != "ssl" && cfg.TLSMode != "starttls" {
		return fmt.Errorf("%w (got %q)", ErrBadTLSMode, cfg.TLSMode)
	}

	msg := gomail.NewMsg()
	if err := msg.From(cfg.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", cfg.From, err)
	}
	if err := msg.To(toAddr); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", toAddr, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	if htmlBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}
	if cfg.TLSMode == "ssl" {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if cfg.User != "" && cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", cfg.Host, err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", toAddr, err)
	}
	return nil
}
