package xnats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/slotdraw/backend/pkg/logger"
	"github.com/slotdraw/backend/pkg/pubsub"
)

const streamName = "SLOTDRAW_EVENTS"

type publisher struct {
	nc            *nats.Conn
	js            jetstream.JetStream
	subjectPrefix string
}

// NewPublisher connects to NATS and makes sure the JetStream stream holding
// every subject under subjectPrefix exists.
func NewPublisher(ctx context.Context, url, subjectPrefix string, log logger.Logger) (*publisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Errorf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       streamName,
		Subjects:   []string{fmt.Sprintf("%s.>", subjectPrefix)},
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    jetstream.FileStorage,
		Duplicates: 2 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &publisher{nc: nc, js: js, subjectPrefix: subjectPrefix}, nil
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	_, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: fmt.Sprintf("%s.%s", p.subjectPrefix, topic),
		Data:    pack.Msg,
		Header:  nats.Header{"Key": []string{string(pack.Key)}},
	}, jetstream.WithExpectStream(streamName))
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	return nil
}

func (p *publisher) Stop(ctx context.Context) error {
	p.nc.Close()
	return nil
}
