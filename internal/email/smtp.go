// Package email entrega los avisos de seguridad de Keywarden. El único
// aviso hoy es el de cuenta bloqueada; el transporte es SMTP y siempre
// best-effort: el flujo de autenticación nunca falla por un correo caído.
package email

import (
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/keywarden/internal/observability/logger"
)

// Notifier avisa al dueño de una cuenta sobre eventos de seguridad.
type Notifier interface {
	LockoutNotice(to, username string, until time.Time, attempts int) error
}

type SMTPNotifier struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPNotifier(host string, port int, from, user, pass string) *SMTPNotifier {
	return &SMTPNotifier{Host: host, Port: port, From: from, User: user, Pass: pass}
}

// LockoutNotice envía el aviso de cuenta bloqueada. to vacío es no-op.
func (n *SMTPNotifier) LockoutNotice(to, username string, until time.Time, attempts int) error {
	if to == "" {
		return nil
	}
	log := logger.Named("email.smtp")

	m := mail.NewMessage()
	m.SetHeader("From", n.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", lockoutSubject)
	m.SetBody("text/plain", lockoutText(username, until, attempts))
	m.AddAlternative("text/html", lockoutHTML(username, until, attempts))

	d := mail.NewDialer(n.Host, n.Port, n.User, n.Pass)
	d.TLSConfig = &tls.Config{ServerName: n.Host}
	// 465 es SMTPS implícito; cualquier otro puerto negocia STARTTLS.
	d.SSL = n.Port == 465

	if err := d.DialAndSend(m); err != nil {
		log.Error("lockout notice failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("lockout notice sent")
	return nil
}
