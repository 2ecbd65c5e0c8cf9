// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package feed pushes synthetic sales figures to connected clients at a fixed interval.
package feed

import (
	"context"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/metrics"
)

// DefaultInterval is the delay between two payloads.
const DefaultInterval = 3 * time.Second

// Transport names used in the registry and logs.
const (
	TransportWebSocket = "websocket"
	TransportSSE       = "sse"
)

// SendFunc delivers one payload to a client.
type SendFunc func(points []Point) error

// Feed ties the registry, the generator and the emission schedule together.
type Feed struct {
	hub      *Hub
	gen      *Generator
	metrics  *metrics.Metrics
	interval time.Duration
}

// New creates a feed. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, gen *Generator, m *metrics.Metrics) *Feed {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Feed{
		hub:      NewHub(m.SetFeedClients),
		gen:      gen,
		metrics:  m,
		interval: interval,
	}
}

// Interval returns the delay between two payloads.
func (f *Feed) Interval() time.Duration {
	return f.interval
}

// Hub returns the connection registry.
func (f *Feed) Hub() *Hub {
	return f.hub
}

// Serve registers a client and sends it a payload immediately and then once per
// interval. It returns when ctx is done or send fails; the client is always
// unregistered on return.
func (f *Feed) Serve(ctx context.Context, remoteAddr, transport string, send SendFunc) error {
	client := f.hub.Register(remoteAddr, transport)
	defer f.hub.Unregister(client)

	log := slog.With("client_id", client.ID, "remote_addr", remoteAddr, "transport", transport)
	log.Info("feed_connected")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if err := send(f.gen.Sample()); err != nil {
			log.Info("feed_disconnected", "reason", err)
			return err
		}
		f.metrics.FeedMessageSent()

		select {
		case <-ctx.Done():
			log.Info("feed_disconnected", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
