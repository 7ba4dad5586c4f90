package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	netmail "net/mail"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

type SMTPServer struct {
	HostPort string
	TLS      *tls.Config
	StartTLS bool
	User     string
	Password string
	Hello    string
}

func dial(options SMTPServer) (*smtp.Client, error) {
	var client *smtp.Client
	var err error

	switch {
	case options.TLS != nil && options.StartTLS:
		client, err = smtp.DialStartTLS(options.HostPort, options.TLS)
	case options.TLS != nil:
		client, err = smtp.DialTLS(options.HostPort, options.TLS)
	default:
		client, err = smtp.Dial(options.HostPort)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to smtp server: %w", err)
	}

	if options.Hello != "" {
		if err = client.Hello(options.Hello); err != nil {
			client.Close()
			return nil, fmt.Errorf("could not greet upstream: %w", err)
		}
	}

	if options.User != "" || options.Password != "" {
		if err := client.Auth(sasl.NewLoginClient(options.User, options.Password)); err != nil {
			client.Close()
			return nil, fmt.Errorf("AUTH failed: %w", err)
		}
	}
	return client, nil
}

// Send delivers message over a fresh connection.
func Send(ctx context.Context, options SMTPServer, message Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	client, err := dial(options)
	if err != nil {
		return err
	}
	defer client.Close()

	sender := message.From
	if addr, err := netmail.ParseAddress(message.From); err == nil {
		sender = addr.Address
	}
	if err := client.Mail(sender, nil); err != nil {
		return fmt.Errorf("smtp server rejected mail from '%s': %w", message.From, err)
	}
	for _, address := range message.To {
		if err := client.Rcpt(address, nil); err != nil {
			return fmt.Errorf("smtp server rejected mail to '%s': %w", address, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp server rejected request to send mail data: %w", err)
	}
	if err := message.Write(writer); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp server rejected mail data: %w", err)
	}

	if err := client.Quit(); err != nil {
		smtpErr := &smtp.SMTPError{}
		// some servers answer QUIT with 250 instead of 221
		if errors.As(err, &smtpErr) && smtpErr.Code == 250 {
			return nil
		}
		return err
	}
	return nil
}
