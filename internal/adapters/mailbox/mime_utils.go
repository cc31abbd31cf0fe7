package mailbox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// DefaultMaxBodySize bounds the decoded body kept from one message
const DefaultMaxBodySize = 1 << 20

// header is satisfied by both mail.Header and textproto.MIMEHeader
type header interface {
	Get(key string) string
}

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// charsetReader decodes any charset known to the WHATWG index into UTF-8
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// DecodeHeader decodes RFC 2047 encoded words, returning the raw value when
// it cannot be decoded
func DecodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// ParseMessage decodes a raw RFC 5322 message. When id is empty the
// Message-ID header is used.
func ParseMessage(id string, raw []byte, maxBodySize int) (*core.RawMessage, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	body, err := extractText(msg.Header, msg.Body, maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to extract message text: %w", err)
	}

	if id == "" {
		id = strings.Trim(strings.TrimSpace(msg.Header.Get("Message-Id")), "<>")
	}

	return &core.RawMessage{
		ID:      id,
		Subject: DecodeHeader(msg.Header.Get("Subject")),
		Body:    body,
		From:    DecodeHeader(msg.Header.Get("From")),
		Date:    msg.Header.Get("Date"),
	}, nil
}

// extractText returns the first text/plain part of a multipart entity, or
// the decoded payload of a single part one
func extractText(h header, body io.Reader, maxBodySize int) (string, error) {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		mediaType, params = "text/plain", map[string]string{}
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return decodeBody(body, h.Get("Content-Transfer-Encoding"), params["charset"], maxBodySize)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return decodeBody(body, h.Get("Content-Transfer-Encoding"), "", maxBodySize)
	}

	text, found, err := firstPlainPart(multipart.NewReader(body, boundary), maxBodySize)
	if err != nil || !found {
		return "", err
	}
	return text, nil
}

func firstPlainPart(mr *multipart.Reader, maxBodySize int) (string, bool, error) {
	for {
		part, err := mr.NextRawPart()
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}

		mediaType, params, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			mediaType, params = "text/plain", map[string]string{}
		}
		disposition, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))

		switch {
		case mediaType == "text/plain" && disposition != "attachment":
			text, err := decodeBody(part, part.Header.Get("Content-Transfer-Encoding"), params["charset"], maxBodySize)
			return text, err == nil, err
		case strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "":
			text, found, err := firstPlainPart(multipart.NewReader(part, params["boundary"]), maxBodySize)
			if err != nil || found {
				return text, found, err
			}
		}
	}
}

func decodeBody(r io.Reader, transferEncoding, charset string, maxBodySize int) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	if charset != "" {
		decoded, err := charsetReader(charset, r)
		if err == nil {
			r = decoded
		}
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(maxBodySize)))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
