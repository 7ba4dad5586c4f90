package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	_ "embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/invitation.html
var invitationHTML string
var invitationHTMLTemplate = htmltemplate.Must(htmltemplate.New("templates/invitation.html").Parse(invitationHTML))

//go:embed templates/invitation.txt
var invitationText string
var invitationTextTemplate = texttemplate.Must(texttemplate.New("templates/invitation.txt").Parse(invitationText))

var ErrNotConfigured = errors.New("mailer not configured")

const implicitTLSPort = "465"

type InvitationMailer struct {
	server   SMTPServer
	from     string
	fromName string
	now      func() time.Time
}

func NewInvitationMailer(host, port, username, password, from, fromName string, useTLS bool) *InvitationMailer {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	server := SMTPServer{
		User:     username,
		Password: password,
	}
	if host != "" && port != "" {
		server.HostPort = net.JoinHostPort(host, port)
	}
	// 465 is implicit TLS; any other port upgrades with STARTTLS.
	if useTLS {
		server.TLS = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		server.StartTLS = port != implicitTLSPort
	}
	return &InvitationMailer{
		server:   server,
		from:     strings.TrimSpace(from),
		fromName: strings.TrimSpace(fromName),
		now:      time.Now,
	}
}

// SendInvitation mails the trip invitation link to recipient.
func (m *InvitationMailer) SendInvitation(ctx context.Context, recipient, tripTitle, inviterName, inviterEmail, link string, expiresAt time.Time) error {
	if m == nil || m.server.HostPort == "" || m.from == "" {
		return ErrNotConfigured
	}
	message, err := m.composeInvitation(recipient, tripTitle, inviterName, inviterEmail, link, expiresAt)
	if err != nil {
		return err
	}
	return Send(ctx, m.server, message)
}

func (m *InvitationMailer) composeInvitation(recipient, tripTitle, inviterName, inviterEmail, link string, expiresAt time.Time) (Message, error) {
	if inviterName == "" {
		inviterName = inviterEmail
	}
	if inviterName == "" {
		inviterName = "A fellow traveler"
	}
	variables := struct {
		TripTitle     string
		InviterName   string
		InviterEmail  string
		Subject       string
		InvitationURL string
		ExpiresIn     string
	}{
		TripTitle:     tripTitle,
		InviterName:   inviterName,
		InviterEmail:  inviterEmail,
		Subject:       headerValue(fmt.Sprintf("%s invited you to plan %s", inviterName, tripTitle)),
		InvitationURL: link,
	}
	if !expiresAt.IsZero() {
		variables.ExpiresIn = humanize.RelTime(expiresAt.Add(30*time.Second), m.now(), "ago", "from now")
	}

	html := bytes.NewBuffer(nil)
	if err := invitationHTMLTemplate.Execute(html, variables); err != nil {
		return Message{}, err
	}
	text := bytes.NewBuffer(nil)
	if err := invitationTextTemplate.Execute(text, variables); err != nil {
		return Message{}, err
	}

	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.from)
	}
	return Message{
		From:         from,
		To:           []string{recipient},
		Subject:      variables.Subject,
		PlainMessage: text.String(),
		HTMLMessage:  html.String(),
	}, nil
}
