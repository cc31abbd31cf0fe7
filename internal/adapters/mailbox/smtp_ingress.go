package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// IngressConfig holds the SMTP content filter settings
type IngressConfig struct {
	ListenAddress        string
	ClassificationHeader string
	UrgentHeader         string
	RequirementsHeader   string
	ForwardEnabled       bool
	ForwardAddress       string
	ProcessTimeout       time.Duration
}

// SMTPIngress is an SMTP content filter. Each relayed message is run through
// the staffing service, tagged with the extracted requirements and forwarded
// to the next hop.
type SMTPIngress struct {
	service *core.StaffingService
	cfg     IngressConfig
	logger  *zap.Logger

	mu       sync.Mutex
	server   *smtp.Server
	listener net.Listener
	done     chan struct{}
}

// NewSMTPIngress creates a new SMTP ingress agent
func NewSMTPIngress(service *core.StaffingService, cfg IngressConfig, logger *zap.Logger) *SMTPIngress {
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = 30 * time.Second
	}
	return &SMTPIngress{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start listens on the configured address and serves in the background
func (g *SMTPIngress) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ln, err := net.Listen("tcp", g.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.cfg.ListenAddress, err)
	}

	g.server = smtp.NewServer(&smtpBackend{ingress: g})
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true
	g.listener = ln
	g.done = make(chan struct{})

	g.logger.Info("SMTP ingress starting", zap.String("address", ln.Addr().String()))

	go func(server *smtp.Server, done chan struct{}) {
		defer close(done)
		if err := server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			g.logger.Error("SMTP server error", zap.Error(err))
		}
	}(g.server, g.done)

	return nil
}

// Stop closes the listener and waits for the server loop to exit
func (g *SMTPIngress) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.server == nil {
		return nil
	}
	err := g.server.Close()
	<-g.done
	g.server = nil
	return err
}

// Addr returns the bound listen address once started
func (g *SMTPIngress) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// tag runs extraction on the raw message and returns it with the result
// headers prepended
func (g *SMTPIngress) tag(sender string, raw []byte) ([]byte, error) {
	msg, err := ParseMessage("", raw, DefaultMaxBodySize)
	if err != nil {
		return nil, err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.From == "" {
		msg.From = sender
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.cfg.ProcessTimeout)
	defer cancel()

	var headers bytes.Buffer
	result, err := g.service.HandleMessage(ctx, msg, nil)
	switch {
	case err != nil:
		g.logger.Error("Failed to extract requirements",
			zap.String("message_id", msg.ID),
			zap.String("sender", sender),
			zap.Error(err))
		writeHeader(&headers, "X-Staffing-Error", err.Error())
	case result == nil:
		return raw, nil
	default:
		requirements, err := json.Marshal(result.Requirements)
		if err != nil {
			return nil, fmt.Errorf("failed to encode requirements: %w", err)
		}
		writeHeader(&headers, g.cfg.ClassificationHeader, result.Classification)
		writeHeader(&headers, g.cfg.UrgentHeader, strconv.FormatBool(result.Requirements.Urgent))
		writeHeader(&headers, g.cfg.RequirementsHeader, string(requirements))
	}

	return append(headers.Bytes(), raw...), nil
}

func writeHeader(w io.Writer, name, value string) {
	if name == "" {
		return
	}
	fmt.Fprintf(w, "%s: %s\r\n", name, mime.QEncoding.Encode("utf-8", value))
}

// forward relays the tagged message to the next hop
func (g *SMTPIngress) forward(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return relayMessage(g.cfg.ForwardAddress, hostname, sender, recipients, data, g.logger)
}

// relayMessage delivers data over SMTP to addr
func relayMessage(addr, hostname, sender string, recipients []string, data []byte, logger *zap.Logger) error {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingress *SMTPIngress
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{ingress: b.ingress}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingress    *SMTPIngress
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the envelope sender
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds an envelope recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data tags the message and relays it
func (s *smtpSession) Data(r io.Reader) error {
	g := s.ingress

	raw, err := io.ReadAll(r)
	if err != nil {
		g.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	tagged, err := g.tag(s.sender, raw)
	if err != nil {
		g.logger.Error("Failed to parse message", zap.String("sender", s.sender), zap.Error(err))
		tagged = raw
	}

	if !g.cfg.ForwardEnabled {
		g.logger.Warn("Forwarding disabled, message accepted without relay", zap.String("sender", s.sender))
		return nil
	}

	if err := g.forward(s.sender, s.recipients, tagged); err != nil {
		g.logger.Error("Failed to forward message",
			zap.String("sender", s.sender),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 1},
			Message:      "Next hop unavailable, try again later",
		}
	}

	g.logger.Debug("Forwarded message", zap.String("sender", s.sender), zap.Int("recipients", len(s.recipients)))
	return nil
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}
