package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// InviteMailer delivers the invitation email for an invitado. Implemented
// by the email package; the consumer only cares about the outcome.
type InviteMailer interface {
	SendInvite(ctx context.Context, invitadoID string) error
}

// StartInviteConsumer connects to RabbitMQ, declares the invite.email queue
// (durable) and delivers invitation emails for each message. It runs a
// reconnect loop with exponential backoff and never returns; failed messages
// are logged and rejected without requeue so a permanently broken invitado
// cannot wedge the queue.
func StartInviteConsumer(mailer InviteMailer) {
	runConsumer(InviteQueueName, func(body []byte) error {
		var ev InviteRequestedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return mailer.SendInvite(ctx, ev.InvitadoID)
	})
}

// StartRedemptionConsumer consumes ticket.redeemed and appends each event to
// logs/redemption.log in a single-line, human-friendly format. Same
// reconnect behavior as the invite consumer.
func StartRedemptionConsumer() {
	runConsumer(RedeemedQueueName, handleRedeemed)
}

func runConsumer(queueName string, handle func(body []byte) error) {
	log := logrus.WithField("queue", queueName)
	backoff := time.Second
	for {
		conn, err := amqp.Dial(BrokerURL())
		if err != nil {
			log.WithError(err).Warnf("consumer: failed to dial broker; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, queueName, handle); err != nil {
			log.WithError(err).Warn("consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, queueName string, handle func(body []byte) error) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handle(d.Body); err != nil {
			logrus.WithError(err).WithField("queue", queueName).Warn("consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleRedeemed(body []byte) error {
	var ev TicketRedeemedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "redemption.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Ticket redeemed | ticket_id=%s | funcion=%q | invitado=%q | validated_by=%d\n",
		ev.RedeemedAt, ev.TicketID, ev.FuncionNombre, ev.InvitadoNombre, ev.ValidatedBy)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
