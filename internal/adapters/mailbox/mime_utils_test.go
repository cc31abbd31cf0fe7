package mailbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestDecodeHeader(t *testing.T) {
	assert.Equal(t, "Besoin d'une infirmière", DecodeHeader("=?ISO-8859-1?Q?Besoin_d'une_infirmi=E8re?="))
	assert.Equal(t, "Quart de nuit à Laval", DecodeHeader("=?windows-1252?Q?Quart_de_nuit_=E0_Laval?="))
	assert.Equal(t, "Remplacement urgent", DecodeHeader("=?UTF-8?B?UmVtcGxhY2VtZW50IHVyZ2VudA==?="))
	assert.Equal(t, "plain subject", DecodeHeader("plain subject"))
}

func TestParseMessageSinglePart(t *testing.T) {
	raw := crlf(`From: RH <rh@cisss.example>
Subject: =?UTF-8?Q?Besoin_PAB?=
Date: Mon, 10 Mar 2025 08:00:00 -0400
Message-ID: <abc@cisss.example>
Content-Type: text/plain; charset=iso-8859-1
Content-Transfer-Encoding: quoted-printable

Quart de nuit =E0 Montr=E9al le 15/03/2025
`)

	msg, err := ParseMessage("", raw, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc@cisss.example", msg.ID)
	assert.Equal(t, "Besoin PAB", msg.Subject)
	assert.Equal(t, "RH <rh@cisss.example>", msg.From)
	assert.Equal(t, "Mon, 10 Mar 2025 08:00:00 -0400", msg.Date)
	assert.Equal(t, "Quart de nuit à Montréal le 15/03/2025\r\n", msg.Body)
}

func TestParseMessageMultipart(t *testing.T) {
	raw := crlf(`From: rh@cisss.example
Subject: Remplacement
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/html; charset=utf-8

<p>ignored</p>
--inner
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: base64

SW5maXJtacOocmUgdXJnZW50ZQ==
--inner--
--outer
Content-Type: text/plain
Content-Disposition: attachment; filename="horaire.txt"

not this one
--outer--
`)

	msg, err := ParseMessage("42", raw, 0)
	require.NoError(t, err)
	assert.Equal(t, "42", msg.ID)
	assert.Equal(t, "Infirmière urgente", msg.Body)
	assert.Equal(t, "Remplacement\nInfirmière urgente", msg.Text())
}

func TestParseMessageWithoutTextPart(t *testing.T) {
	raw := crlf(`From: rh@cisss.example
Subject: Horaire
Content-Type: multipart/mixed; boundary="b"

--b
Content-Type: application/pdf

%PDF
--b--
`)

	msg, err := ParseMessage("1", raw, 0)
	require.NoError(t, err)
	assert.Empty(t, msg.Body)
	assert.Equal(t, "Horaire", msg.Subject)
}

func TestParseMessageBodyLimit(t *testing.T) {
	raw := crlf("Subject: x\n\n" + strings.Repeat("a", 100))

	msg, err := ParseMessage("1", raw, 10)
	require.NoError(t, err)
	assert.Len(t, msg.Body, 10)
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ParseMessage("1", []byte("not a message"), 0)
	assert.Error(t, err)
}
