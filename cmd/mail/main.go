package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/chama-dev/chama/backend/internal/config"
	"github.com/chama-dev/chama/backend/internal/domain"
)

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeOfficerInvitation: {
		file:    "officer_invitation_email.html",
		subject: "Chama - you have been named a group official",
	},
}

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("cannot create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// make sure the SMTP server is reachable before consuming anything
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("cannot connect to mail server", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("cannot connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("cannot open channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,  // durable
		false, // auto delete, keep the queue while no consumer runs
		false, // exclusive
		false, // no wait
		nil,
	)
	if err != nil {
		logger.Error("cannot declare queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag chosen by the broker
		false, // manual ack
		false, // exclusive
		false, // no local, unsupported by rabbitmq
		false, // no wait
		nil,
	)
	if err != nil {
		logger.Error("cannot consume queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("delivery channel closed")
					return
				}
				requeue, err := deliver(cfg, client, msg.Body)
				if err != nil {
					logger.Error("mail not delivered", slog.String("error", err.Error()), slog.Bool("requeue", requeue))
					_ = msg.Nack(false, requeue)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("waiting for mail jobs (CTRL+C to quit)")
	<-sigChan

	logger.Info("stopping mail worker")
	cancel()
	wg.Wait()
	logger.Info("mail worker stopped")
}

// deliver renders and sends one mail job. requeue is true only for failures
// that may succeed on retry.
func deliver(cfg *config.Config, client *mail.Client, body []byte) (requeue bool, err error) {
	var raw struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return false, err
	}

	mt, ok := mailTemplates[raw.Type]
	if !ok {
		slog.Error("unsupported mail type", slog.String("type", raw.Type))
		return false, nil
	}

	var data domain.OfficerInvitationMailData
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return false, err
	}

	m := mail.NewMsg()
	if err := m.From(cfg.Email.SMTP.Username); err != nil {
		return false, err
	}
	if err := m.To(raw.To); err != nil {
		return false, err
	}

	tmpl, err := template.ParseFiles(filepath.Join(cfg.Email.TemplateDir, mt.file))
	if err != nil {
		return false, err
	}
	if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return false, err
	}
	m.Subject(mt.subject)

	if err := client.DialAndSend(m); err != nil {
		return true, err
	}

	return false, nil
}
