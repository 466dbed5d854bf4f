package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jastrate/task-manager/internal/config"
	"github.com/jastrate/task-manager/internal/worker"
	"github.com/jastrate/task-manager/pkg/logger"
)

// MailMessage is a single plain-text email.
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg MailMessage) error {
	logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("mail delivery skipped, no smtp relay configured")
	return nil
}

// MailDispatcher hands a message off for delivery.
type MailDispatcher interface {
	Dispatch(ctx context.Context, msg MailMessage) error
}

// DirectDispatcher delivers on the calling goroutine.
type DirectDispatcher struct {
	mailer Mailer
}

func NewDirectDispatcher(mailer Mailer) *DirectDispatcher {
	return &DirectDispatcher{mailer: mailer}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, msg MailMessage) error {
	return d.mailer.Send(ctx, msg)
}

// QueueDispatcher enqueues an email job for the background worker.
type QueueDispatcher struct {
	queue *worker.JobQueue
	name  string
}

func NewQueueDispatcher(queue *worker.JobQueue, queueName string) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, name: queueName}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, msg MailMessage) error {
	payload := map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}
	return d.queue.Enqueue(ctx, d.name, worker.JobTypeEmailNotification, payload)
}

// EmailJobHandler delivers queued email jobs through mailer.
func EmailJobHandler(mailer Mailer) worker.JobHandler {
	return func(ctx context.Context, job *worker.Job) error {
		to, _ := job.Payload["to"].(string)
		subject, _ := job.Payload["subject"].(string)
		body, _ := job.Payload["body"].(string)
		if to == "" {
			return fmt.Errorf("email job %s has no recipient", job.ID)
		}
		return mailer.Send(ctx, MailMessage{To: to, Subject: subject, Body: body})
	}
}
