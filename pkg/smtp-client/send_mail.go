package smtp_client

import (
	"errors"
	"log/slog"
	"net/textproto"

	"github.com/jordan-wright/email"
	"github.com/knadh/smtppool"
)

func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
	overrides *HeaderOverrides,
) error {
	sc.counter += 1
	if len(sc.connectionPool) < 1 {
		sc.connectionPool = initConnectionPool(sc.servers)
		if len(sc.connectionPool) < 1 {
			return errors.New("no servers defined")
		}
	}

	index := int(sc.counter % uint64(len(sc.connectionPool)))
	selectedServer := sc.connectionPool[index]

	From := sc.servers.From
	Sender := sc.servers.Sender
	ReplyTo := sc.servers.ReplyTo

	if overrides != nil {
		if overrides.From != "" {
			From = overrides.From
		}
		if overrides.Sender != "" {
			Sender = overrides.Sender
		}

		if overrides.NoReplyTo {
			ReplyTo = []string{}
		} else if len(overrides.ReplyTo) > 0 {
			ReplyTo = overrides.ReplyTo
		}
	}

	err := selectedServer.Send(smtppool.Email{
		To:      to,
		From:    From,
		Sender:  Sender,
		ReplyTo: ReplyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	})
	if err == nil {
		return nil
	}

	slog.Error("error when trying to send email", slog.String("error", err.Error()))

	server := sc.servers.Servers[index]

	// reconnect the pool for subsequent sends
	pool, errReconnect := connectToPool(server)
	if errReconnect != nil {
		slog.Error("cannot reconnect pool", slog.String("error", errReconnect.Error()), slog.String("server", server.Host))
	} else {
		slog.Info("reconnected to pool", slog.String("server", server.Host))
		sc.connectionPool[index] = pool
	}

	// one-shot direct delivery attempt, so the message is not lost while the
	// pool is down
	e := &email.Email{
		To:      to,
		From:    From,
		Sender:  Sender,
		ReplyTo: ReplyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
	if errDirect := e.SendWithStartTLS(server.Address(), smtpAuth(server), tlsConfigFor(server)); errDirect != nil {
		slog.Error("direct send attempt failed", slog.String("error", errDirect.Error()), slog.String("server", server.Host))
		return err
	}
	return nil
}
