// Package natsutil provides typed JSON publish/subscribe helpers over NATS
// that carry OpenTelemetry trace context in message headers.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// headerCarrier adapts nats.Msg headers to propagation.TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish encodes v as JSON and publishes it on subject.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("natsutil: encode %s: %w", subject, err)
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	if err := nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("natsutil: publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe decodes each message on subject into T and calls handler with a
// context carrying the publisher's trace. An empty payload decodes to the zero
// T. Messages that fail to decode are passed to onError, when set, and are
// otherwise dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T), onError func(error)) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &v); err != nil {
				if onError != nil {
					onError(fmt.Errorf("natsutil: decode %s: %w", subject, err))
				}
				return
			}
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, v)
	})
	if err != nil {
		return nil, fmt.Errorf("natsutil: subscribe %s: %w", subject, err)
	}
	return sub, nil
}
