package mailbox

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// IMAPConfig holds the mailbox connection settings
type IMAPConfig struct {
	Address         string
	Username        string
	Password        string
	Folder          string
	ProcessedFolder string
	MaxBodySize     int
}

// Dialer opens a connection to the IMAP server
type Dialer func(address string) (*client.Client, error)

// DialTLS connects with implicit TLS
func DialTLS(address string) (*client.Client, error) {
	return client.DialTLS(address, nil)
}

// IMAPMailbox fetches unseen messages from a folder and moves processed ones
// to another folder. It implements both MessageSource and MessageSink.
// The connection is opened lazily and kept until Close.
type IMAPMailbox struct {
	cfg    IMAPConfig
	dial   Dialer
	logger *zap.Logger

	mu            sync.Mutex
	c             *client.Client
	processedSeen bool
}

// NewIMAPMailbox creates a new IMAP mailbox adapter
func NewIMAPMailbox(cfg IMAPConfig, dial Dialer, logger *zap.Logger) *IMAPMailbox {
	if dial == nil {
		dial = DialTLS
	}
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	return &IMAPMailbox{
		cfg:    cfg,
		dial:   dial,
		logger: logger,
	}
}

// Fetch returns the unseen messages of the configured folder. Bodies are
// fetched with PEEK so a message left unprocessed stays unseen.
func (m *IMAPMailbox) Fetch(ctx context.Context) ([]*core.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := m.connect()
	if err != nil {
		return nil, err
	}

	if _, err := c.Select(m.cfg.Folder, false); err != nil {
		m.reset()
		return nil, fmt.Errorf("failed to select %s: %w", m.cfg.Folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		m.reset()
		return nil, fmt.Errorf("failed to search unseen messages: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	fetched := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, fetched)
	}()

	var messages []*core.RawMessage
	for msg := range fetched {
		id := strconv.FormatUint(uint64(msg.Uid), 10)
		body := msg.GetBody(section)
		if body == nil {
			m.logger.Warn("Server returned no body", zap.String("message_id", id))
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			m.logger.Warn("Failed to read message body", zap.String("message_id", id), zap.Error(err))
			continue
		}
		parsed, err := ParseMessage(id, raw, m.cfg.MaxBodySize)
		if err != nil {
			m.logger.Warn("Failed to parse message", zap.String("message_id", id), zap.Error(err))
			continue
		}
		messages = append(messages, parsed)
	}

	if err := <-done; err != nil {
		m.reset()
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	m.logger.Debug("Fetched unseen messages",
		zap.String("folder", m.cfg.Folder),
		zap.Int("count", len(messages)))
	return messages, nil
}

// MarkProcessed moves the message to the processed folder, creating the
// folder when it does not exist. Moving an already moved UID is a no-op.
func (m *IMAPMailbox) MarkProcessed(ctx context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	uid, err := ParseUID(messageID)
	if err != nil {
		return err
	}
	c, err := m.connect()
	if err != nil {
		return err
	}
	if err := m.ensureProcessedFolder(c); err != nil {
		return err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	if err := c.UidMove(seqset, m.cfg.ProcessedFolder); err != nil {
		return fmt.Errorf("failed to move message %d to %s: %w", uid, m.cfg.ProcessedFolder, err)
	}
	return nil
}

// Close logs out and drops the connection
func (m *IMAPMailbox) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.c == nil {
		return nil
	}
	err := m.c.Logout()
	m.c = nil
	return err
}

func (m *IMAPMailbox) connect() (*client.Client, error) {
	if m.c != nil && m.c.State() != imap.LogoutState {
		return m.c, nil
	}

	c, err := m.dial(m.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", m.cfg.Address, err)
	}
	if err := c.Login(m.cfg.Username, m.cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to log in as %s: %w", m.cfg.Username, err)
	}

	m.logger.Info("Connected to IMAP server",
		zap.String("address", m.cfg.Address),
		zap.String("username", m.cfg.Username))
	m.c = c
	return c, nil
}

func (m *IMAPMailbox) reset() {
	if m.c != nil {
		_ = m.c.Logout()
		m.c = nil
	}
}

func (m *IMAPMailbox) ensureProcessedFolder(c *client.Client) error {
	if m.processedSeen {
		return nil
	}

	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.List("", m.cfg.ProcessedFolder, mailboxes)
	}()
	exists := false
	for info := range mailboxes {
		if info.Name == m.cfg.ProcessedFolder {
			exists = true
		}
	}
	if err := <-done; err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	if !exists {
		if err := c.Create(m.cfg.ProcessedFolder); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", m.cfg.ProcessedFolder, err)
		}
		m.logger.Info("Created processed folder", zap.String("folder", m.cfg.ProcessedFolder))
	}
	m.processedSeen = true
	return nil
}

// ParseUID converts a message id produced by Fetch back into an IMAP UID
func ParseUID(messageID string) (uint32, error) {
	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil || uid == 0 {
		return 0, fmt.Errorf("invalid IMAP message id %q", messageID)
	}
	return uint32(uid), nil
}
