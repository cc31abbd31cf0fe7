package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// FileSource reads messages from a file, a directory of .eml files or a
// reader. Input that is not a valid RFC 5322 message is taken as plain text.
type FileSource struct {
	path        string
	stdin       io.Reader
	maxBodySize int
	logger      *zap.Logger
}

// NewFileSource creates a source over path. When path is empty the
// messages are read from stdin.
func NewFileSource(path string, stdin io.Reader, maxBodySize int, logger *zap.Logger) *FileSource {
	return &FileSource{
		path:        path,
		stdin:       stdin,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Fetch returns the messages found at the configured location
func (s *FileSource) Fetch(ctx context.Context) ([]*core.RawMessage, error) {
	if s.path == "" {
		s.logger.Info("Reading message from stdin")
		raw, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []*core.RawMessage{s.parse("stdin", raw)}, nil
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if !info.IsDir() {
		msg, err := s.readFile(s.path)
		if err != nil {
			return nil, err
		}
		return []*core.RawMessage{msg}, nil
	}

	paths, err := filepath.Glob(filepath.Join(s.path, "*.eml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.path, err)
	}
	sort.Strings(paths)

	messages := make([]*core.RawMessage, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return messages, err
		}
		msg, err := s.readFile(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable message file", zap.String("file", path), zap.Error(err))
			continue
		}
		messages = append(messages, msg)
	}
	s.logger.Info("Read message files", zap.String("dir", s.path), zap.Int("count", len(messages)))
	return messages, nil
}

func (s *FileSource) readFile(path string) (*core.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.parse(path, raw), nil
}

// parse decodes raw as a message, falling back to plain text
func (s *FileSource) parse(id string, raw []byte) *core.RawMessage {
	if looksLikeMessage(raw) {
		msg, err := ParseMessage("", raw, s.maxBodySize)
		if err == nil {
			if msg.ID == "" {
				msg.ID = id
			}
			return msg
		}
		s.logger.Debug("Input is not a valid message, reading as text", zap.String("id", id), zap.Error(err))
	}
	maxBodySize := s.maxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	body, _ := decodeBody(bytes.NewReader(raw), "", "", maxBodySize)
	return &core.RawMessage{ID: id, Body: body}
}

// looksLikeMessage reports whether raw starts with a header field
func looksLikeMessage(raw []byte) bool {
	line, _, _ := strings.Cut(string(raw[:min(len(raw), 1024)]), "\n")
	name, _, found := strings.Cut(line, ":")
	return found && name != "" && !strings.ContainsAny(name, " \t")
}
