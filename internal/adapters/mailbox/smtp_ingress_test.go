package mailbox

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/mail"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/adapters/recognizer"
	"github.com/mikey/staffing-mail-agent/internal/core"
)

type captured struct {
	from string
	to   []string
	data []byte
}

// captureBackend is a next hop recording every delivered message
type captureBackend struct {
	messages chan captured
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{backend: b}, nil
}

type captureSession struct {
	backend *captureBackend
	msg     captured
}

func (s *captureSession) Reset()        { s.msg = captured{} }
func (s *captureSession) Logout() error { return nil }

func (s *captureSession) Mail(from string, _ *smtp.MailOptions) error {
	s.msg.from = from
	return nil
}

func (s *captureSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.msg.to = append(s.msg.to, to)
	return nil
}

func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.msg.data = data
	s.backend.messages <- s.msg
	return nil
}

func startNextHop(t *testing.T) (string, chan captured) {
	t.Helper()

	be := &captureBackend{messages: make(chan captured, 4)}
	s := smtp.NewServer(be)
	s.Domain = "localhost"
	s.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ln)
	t.Cleanup(func() { s.Close() })

	return ln.Addr().String(), be.messages
}

func newIngressService() *core.StaffingService {
	extractor := core.NewRequirementExtractor(core.DefaultExtractionConfig(),
		core.NewDateNormalizer(core.DefaultMinYear, core.DefaultMaxYear), zap.NewNop())
	return core.NewStaffingService(
		recognizer.NewRulesRecognizer([]string{"Montréal"}, zap.NewNop()),
		core.NewPatternRuler(core.DefaultPatternConfig()),
		extractor,
		nil, nil, nil,
		zap.NewNop(),
		core.ServiceOptions{},
	)
}

func TestSMTPIngressTagsAndForwards(t *testing.T) {
	nextHop, delivered := startNextHop(t)

	ingress := NewSMTPIngress(newIngressService(), IngressConfig{
		ListenAddress:        "127.0.0.1:0",
		ClassificationHeader: "X-Staffing-Classification",
		UrgentHeader:         "X-Staffing-Urgent",
		RequirementsHeader:   "X-Staffing-Requirements",
		ForwardEnabled:       true,
		ForwardAddress:       nextHop,
	}, zap.NewNop())
	require.NoError(t, ingress.Start())
	defer ingress.Stop()

	raw := []byte("From: rh@cisss.example\r\n" +
		"Subject: Remplacement\r\n" +
		"\r\n" +
		"Besoin d'une infirmière urgent pour un quart de nuit à Montréal le 15/03/2025, de 19h à 7h\r\n")
	require.NoError(t, relayMessage(ingress.Addr(), "localhost", "rh@cisss.example", []string{"staffing@example.org"}, raw, zap.NewNop()))

	var got captured
	select {
	case got = <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("message was not forwarded")
	}

	assert.Equal(t, "rh@cisss.example", got.from)
	assert.Equal(t, []string{"staffing@example.org"}, got.to)

	msg, err := mail.ReadMessage(bytes.NewReader(got.data))
	require.NoError(t, err)
	assert.Equal(t, "INFIRMIÈRE", DecodeHeader(msg.Header.Get("X-Staffing-Classification")))
	assert.Equal(t, "true", msg.Header.Get("X-Staffing-Urgent"))
	assert.Equal(t, "Remplacement", msg.Header.Get("Subject"))

	var record core.RequirementRecord
	require.NoError(t, json.Unmarshal([]byte(DecodeHeader(msg.Header.Get("X-Staffing-Requirements"))), &record))
	assert.Equal(t, []string{"Montréal"}, record.Locations)
	assert.Equal(t, "12h", record.ShiftDuration)
}

func TestSMTPIngressNextHopDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	unreachable := ln.Addr().String()
	ln.Close()

	ingress := NewSMTPIngress(newIngressService(), IngressConfig{
		ListenAddress:  "127.0.0.1:0",
		ForwardEnabled: true,
		ForwardAddress: unreachable,
	}, zap.NewNop())
	require.NoError(t, ingress.Start())
	defer ingress.Stop()

	err = relayMessage(ingress.Addr(), "localhost", "rh@cisss.example", []string{"staffing@example.org"},
		[]byte("Subject: PAB\r\n\r\nquart de jour\r\n"), zap.NewNop())
	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 451, smtpErr.Code)
}
