package render

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/gzhole/sitbench/internal/synth"
)

const (
	defaultFrom = "sitbench@example.com"
	defaultTo   = "qa@example.com"
	emlDate     = "Mon, 01 Jan 2024 00:00:00 +0000"
)

// EML writes an RFC 5322 message whose text/plain body is the full document
// text. Header fields come from the email layout's own From/To/Subject lines
// when present.
type EML struct{}

func (EML) Format() string { return "eml" }

func (EML) Render(doc *synth.Document) ([]byte, error) {
	h := leadingHeaders(doc.Text)
	from := addressOr(h["from"], defaultFrom)
	to := addressOr(h["to"], defaultTo)
	subject := h["subject"]
	if subject == "" {
		subject = "Automated message " + doc.DocID
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", emlDate)
	fmt.Fprintf(&buf, "Message-ID: <%s@sitbench.local>\r\n", doc.DocID)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(doc.Text)
	return buf.Bytes(), nil
}

// Extract returns the decoded body of a single-part message.
func (EML) Extract(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse eml: %w", err)
	}
	if ct := msg.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return "", fmt.Errorf("parse content type: %w", err)
		}
		if mediaType != "text/plain" {
			return "", fmt.Errorf("unsupported eml body %q", mediaType)
		}
	}

	var body io.Reader = msg.Body
	switch strings.ToLower(msg.Header.Get("Content-Transfer-Encoding")) {
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	}
	out, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read eml body: %w", err)
	}
	return string(out), nil
}

// leadingHeaders reads "Key: value" lines at the top of text up to the first
// blank line. Keys are lower-cased.
func leadingHeaders(text string) map[string]string {
	h := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		k = strings.ToLower(strings.TrimSpace(k))
		switch k {
		case "from", "to", "subject":
			h[k] = strings.TrimSpace(v)
		default:
			return h
		}
	}
	return h
}

func addressOr(s, fallback string) string {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		addr = &mail.Address{Address: fallback}
	}
	return addr.String()
}
