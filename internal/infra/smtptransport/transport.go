// internal/infra/smtptransport/transport.go
package smtptransport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"

	"outreach_engine/internal/domain/mail"

	"github.com/sirupsen/logrus"
)

// Transport submits messages over SMTP. Port 587 negotiates STARTTLS,
// port 465 opens an implicit TLS session, and any other port tries STARTTLS
// first and falls back to implicit TLS.
type Transport struct {
	server   string
	port     int
	from     string
	password string
	log      *logrus.Logger
}

func New(server string, port int, from, password string, log *logrus.Logger) *Transport {
	return &Transport{
		server:   server,
		port:     port,
		from:     from,
		password: password,
		log:      log,
	}
}

func (t *Transport) Deliver(ctx context.Context, to string, msg mail.Message) error {
	c, err := t.connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: connect %s: %v", mail.ErrTransport, t.addr(), err)
	}
	defer c.Close()

	if err := t.authenticate(c); err != nil {
		return fmt.Errorf("%w: auth as %s: %v", mail.ErrTransport, t.from, err)
	}
	if err := t.send(c, to, msg); err != nil {
		return fmt.Errorf("%w: deliver to %s: %v", mail.ErrTransport, to, err)
	}
	return nil
}

// VerifyConnection dials and authenticates without submitting anything.
// The CLI runs it before the first cycle so credential problems surface
// before any quota is spent.
func (t *Transport) VerifyConnection(ctx context.Context) error {
	c, err := t.connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: connect %s: %v", mail.ErrTransport, t.addr(), err)
	}
	defer c.Close()

	if err := t.authenticate(c); err != nil {
		return fmt.Errorf("%w: auth as %s: %v", mail.ErrTransport, t.from, err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("%w: quit: %v", mail.ErrTransport, err)
	}
	return nil
}

func (t *Transport) connect(ctx context.Context) (*smtp.Client, error) {
	switch t.port {
	case 587:
		return t.connectSTARTTLS(ctx)
	case 465:
		return t.connectTLS(ctx)
	default:
		c, err := t.connectSTARTTLS(ctx)
		if err == nil {
			return c, nil
		}
		t.log.Debugf("STARTTLS connect to %s failed (%v), trying implicit TLS", t.addr(), err)
		return t.connectTLS(ctx)
	}
}

func (t *Transport) connectSTARTTLS(ctx context.Context) (*smtp.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr())
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, t.server)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.StartTLS(&tls.Config{ServerName: t.server}); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (t *Transport) connectTLS(ctx context.Context) (*smtp.Client, error) {
	d := tls.Dialer{Config: &tls.Config{ServerName: t.server}}
	conn, err := d.DialContext(ctx, "tcp", t.addr())
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, t.server)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (t *Transport) authenticate(c *smtp.Client) error {
	return c.Auth(smtp.PlainAuth("", t.from, t.password, t.server))
}

func (t *Transport) send(c *smtp.Client, to string, msg mail.Message) error {
	if err := c.Mail(t.from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	body, err := buildMessage(t.from, to, msg)
	if err != nil {
		w.Close()
		return err
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (t *Transport) addr() string {
	return net.JoinHostPort(t.server, strconv.Itoa(t.port))
}

// buildMessage assembles a multipart/alternative envelope with a plain-text
// part derived from the HTML body, so clients that refuse HTML still render
// something readable.
func buildMessage(from, to string, msg mail.Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	tw, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, fmt.Errorf("build text part: %w", err)
	}
	if _, err := tw.Write([]byte(htmlToText(msg.HTMLBody))); err != nil {
		return nil, fmt.Errorf("build text part: %w", err)
	}

	hw, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, fmt.Errorf("build html part: %w", err)
	}
	if _, err := hw.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, fmt.Errorf("build html part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close envelope: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	blankPattern = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// htmlToText does a rough conversion good enough for the alternative part:
// paragraphs become blank-line separated blocks, breaks become newlines,
// everything else is stripped.
func htmlToText(html string) string {
	text := strings.NewReplacer(
		"<p>", "",
		"</p>", "\n\n",
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
	).Replace(html)
	text = tagPattern.ReplaceAllString(text, "")
	text = blankPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
