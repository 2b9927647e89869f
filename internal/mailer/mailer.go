// Package mailer sends billing documents over SMTP.
//
// Each message gets its own SMTP session: dial, STARTTLS, authenticate,
// send, quit. No connection state is shared between sends, so failures
// stay isolated to the message that hit them.
package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

const (
	// DefaultPort is the SMTP submission port.
	DefaultPort = 587

	// DefaultTimeout bounds the whole SMTP exchange for one message.
	DefaultTimeout = 25 * time.Second
)

// Config holds the SMTP endpoint and credentials.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the envelope and header sender address.
	From string

	// Timeout bounds dialing and the SMTP dialog. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Sender sends one email per SMTP session.
type Sender struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithLogger sets the logger for the sender.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) {
		s.logger = l
	}
}

// New creates a Sender. Zero-valued port and timeout fall back to the
// submission defaults.
func New(cfg Config, opts ...Option) *Sender {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Sender{
		cfg:    cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Send delivers one message with the PDF at attachmentPath attached.
func (s *Sender) Send(to, subject, body, attachmentPath string) error {
	msg, err := buildMessage(s.cfg.From, to, subject, body, attachmentPath)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := net.DialTimeout("tcp", addr, s.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	// One deadline covers the whole dialog; a stalled server cannot hold
	// the dispatch loop past the configured timeout.
	_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
		return fmt.Errorf("smtp starttls: %w", err)
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}

	s.logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}

// sanitizeHeaderValue strips CR/LF so operator-influenced values cannot
// inject SMTP headers.
func sanitizeHeaderValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// buildMessage assembles the MIME message: a text/plain body plus one PDF
// attachment, with RFC-compliant headers handled by go-message.
func buildMessage(from, to, subject, body, attachmentPath string) ([]byte, error) {
	pdf, err := os.ReadFile(attachmentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %q; %w", attachmentPath, err)
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: sanitizeHeaderValue(from)}})
	h.SetAddressList("To", []*mail.Address{{Address: sanitizeHeaderValue(to)}})
	h.SetSubject(sanitizeHeaderValue(subject))

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer; %w", err)
	}

	var ih mail.InlineHeader
	ih.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	bw, err := mw.CreateSingleInline(ih)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part; %w", err)
	}
	if _, err := io.WriteString(bw, body); err != nil {
		_ = bw.Close()
		return nil, fmt.Errorf("failed to write body; %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close body part; %w", err)
	}

	var ah mail.AttachmentHeader
	ah.SetContentType("application/pdf", nil)
	ah.SetFilename(filepath.Base(attachmentPath))
	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part; %w", err)
	}
	if _, err := aw.Write(pdf); err != nil {
		_ = aw.Close()
		return nil, fmt.Errorf("failed to write attachment; %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close attachment part; %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message; %w", err)
	}

	return buf.Bytes(), nil
}
