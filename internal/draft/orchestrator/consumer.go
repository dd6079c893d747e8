package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/rinkdraft/rinkdraft/internal/draft/events"
)

const (
	consumerName          = "draft-orchestrator"
	consumerMaxDeliver    = 5
	consumerAckWait       = 30 * time.Second
	consumerMaxAckPending = 256
	natsMaxReconnects     = -1
	natsReconnectWait     = 2 * time.Second
)

// DomainEvent is the envelope the outbox publisher wraps payloads in.
type DomainEvent struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	DraftID   string          `json:"draftId"`
	Payload   json.RawMessage `json:"payload"`
}

// StartEventConsumer subscribes to the draft event stream and wakes the
// scheduler whenever an event lands that can move a deadline: a started
// draft, a committed pick, a skipped turn. The scheduler re-reads its
// deadline from the database, so missing an event only costs one idle
// poll interval, never correctness.
func (o *Orchestrator) StartEventConsumer(ctx context.Context) error {
	opts := []nats.Option{
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(o.config.NATSURL, opts...)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	o.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.Stream(ctx, "DRAFT_EVENTS")
	if err != nil {
		nc.Close()
		return fmt.Errorf("get stream: %w", err)
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, jetstream.ConsumerConfig{
			Name:          consumerName,
			Durable:       consumerName,
			Description:   "Wakes the draft scheduler on deadline-moving events",
			FilterSubject: "draft.events.>",
			DeliverPolicy: jetstream.DeliverNewPolicy,
			AckPolicy:     jetstream.AckExplicitPolicy,
			MaxDeliver:    consumerMaxDeliver,
			AckWait:       consumerAckWait,
			MaxAckPending: consumerMaxAckPending,
			ReplayPolicy:  jetstream.ReplayInstantPolicy,
		})
		if err != nil {
			nc.Close()
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Msg("created JetStream consumer for scheduler")
	}
	o.consumer = consumer

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := o.processEvent(msg); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process event")
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("start JetStream consumer: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()

	return nil
}

func (o *Orchestrator) processEvent(msg jetstream.Msg) error {
	var event DomainEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	switch event.EventType {
	case events.TypeDraftStarted, events.TypePickMade, events.TypeTurnSkipped, events.TypeDraftCompleted:
		log.Debug().
			Str("event_type", event.EventType).
			Str("draft_id", event.DraftID).
			Msg("waking scheduler")
		o.Wake()
	default:
		// Lobby events (TeamJoined, OrderShuffled) never move a deadline.
	}
	return nil
}
