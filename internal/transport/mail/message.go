package mail

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

// Message is a text + html alternative email.
type Message struct {
	From         string
	To           []string
	Subject      string
	PlainMessage string
	HTMLMessage  string
	Rand         *rand.Rand
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds a value onto one line so it cannot start a new header.
func headerValue(value string) string {
	return strings.TrimSpace(lineBreaks.Replace(value))
}

var globalRand = rand.New(rand.NewSource(time.Now().UTC().UnixNano())) // #nosec G404

func (m *Message) Write(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w,
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n",
		headerValue(m.From), headerValue(strings.Join(m.To, ", ")),
		mime.QEncoding.Encode("utf-8", headerValue(m.Subject)))
	if err != nil {
		return err
	}

	random := m.Rand
	if random == nil {
		random = globalRand
	}
	boundary := randomBoundary(random)
	if _, err = fmt.Fprintf(w, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary); err != nil {
		return err
	}
	alternatives := multipart.NewWriter(w)
	if err = alternatives.SetBoundary(boundary); err != nil {
		return err
	}

	if m.PlainMessage != "" {
		if err = addQuotedPrintablePart(alternatives, "text/plain; charset=UTF-8", m.PlainMessage); err != nil {
			return err
		}
	}
	if m.HTMLMessage != "" {
		if err = addQuotedPrintablePart(alternatives, "text/html; charset=UTF-8", m.HTMLMessage); err != nil {
			return err
		}
	}
	return alternatives.Close()
}

func addQuotedPrintablePart(w *multipart.Writer, contentType, content string) error {
	buf := bytes.NewBuffer(nil)
	qp := quotedprintable.NewWriter(buf)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	if err := qp.Close(); err != nil {
		return err
	}
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Transfer-Encoding": {"quoted-printable"},
		"Content-Type":              {contentType},
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(part, buf)
	return err
}

func randomBoundary(random *rand.Rand) string {
	var buf [30]byte
	if _, err := io.ReadFull(random, buf[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", buf[:])
}
