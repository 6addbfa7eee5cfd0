// Package invitation asks pending officers to activate their accounts. Each
// invitation is an activation token kept in redis plus a mail job on the
// rabbitmq mail queue.
package invitation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/chama-dev/chama/backend/internal/config"
	"github.com/chama-dev/chama/backend/internal/domain"
)

// Publisher is the part of *amqp.Channel the dispatcher needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// TokenStore is the part of redis.Cmdable the dispatcher needs.
type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type Dispatcher struct {
	cfg       *config.Config
	publisher Publisher
	tokens    TokenStore
}

func NewDispatcher(cfg *config.Config, publisher Publisher, tokens TokenStore) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		publisher: publisher,
		tokens:    tokens,
	}
}

func tokenKey(token string) string {
	return fmt.Sprintf("invitation_%s", token)
}

func (d *Dispatcher) Invite(ctx context.Context, slot domain.OfficerSlot, groupID string) error {
	inv := domain.Invitation{
		Token:   uuid.NewString(),
		GroupID: groupID,
		Role:    slot.Role,
		Name:    slot.Name,
		Email:   slot.Email,
	}

	payload, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	expiration := time.Duration(d.cfg.Invitation.Expiration) * time.Second

	redisCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	if err := d.tokens.Set(redisCtx, tokenKey(inv.Token), payload, expiration).Err(); err != nil {
		return fmt.Errorf("store invitation token: %w", err)
	}

	activationURL, err := url.Parse(d.cfg.Invitation.ActivationURL)
	if err != nil {
		return fmt.Errorf("parse activation url: %w", err)
	}
	q := activationURL.Query()
	q.Set("token", inv.Token)
	activationURL.RawQuery = q.Encode()

	mailMessage := domain.MailMessage{
		Type: domain.MailTypeOfficerInvitation,
		To:   slot.Email,
		Data: domain.OfficerInvitationMailData{
			FullName:      slot.Name,
			Role:          slot.Role,
			ActivationURL: activationURL.String(),
			Expiration:    int(expiration.Hours() / 24), // shown in days
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := d.publisher.PublishWithContext(
		publishCtx,
		"",
		d.cfg.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         mailData,
		},
	); err != nil {
		return fmt.Errorf("publish invitation mail: %w", err)
	}

	return nil
}

// Lookup resolves an activation token. It returns redis.Nil for unknown or
// expired tokens.
func (d *Dispatcher) Lookup(ctx context.Context, token string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	payload, err := d.tokens.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{}
	if err := json.Unmarshal(payload, inv); err != nil {
		return nil, err
	}

	return inv, nil
}
