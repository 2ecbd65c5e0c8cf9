// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/feed"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// FeedHandlers serves the live feed over WebSocket and SSE.
type FeedHandlers struct {
	feed      *feed.Feed
	upgrader  websocket.Upgrader
	heartbeat time.Duration
}

// NewFeed creates feed handlers. Browsers may connect from the same host or
// from one of allowedOrigins.
func NewFeed(f *feed.Feed, allowedOrigins []string) *FeedHandlers {
	return &FeedHandlers{
		feed:      f,
		heartbeat: feed.HeartbeatInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// WithHeartbeat sets the delay between SSE heartbeat comments.
func (h *FeedHandlers) WithHeartbeat(d time.Duration) *FeedHandlers {
	if d > 0 {
		h.heartbeat = d
	}
	return h
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// WebSocket upgrades the connection and pushes a JSON array of points per interval.
func (h *FeedHandlers) WebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		slog.Debug("websocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Inbound frames are discarded; a read error means the client went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	err = h.feed.Serve(ctx, c.RealIP(), feed.TransportWebSocket, func(points []feed.Point) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(points)
	})
	if err != nil && !errors.Is(err, context.Canceled) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		slog.Debug("websocket feed ended", "error", err)
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}

// Events streams the same payloads as server-sent events named "metrics",
// interleaved with heartbeat comments.
func (h *FeedHandlers) Events(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Feed payloads and heartbeats come from different goroutines.
	var mu sync.Mutex
	write := func(frame string) error {
		mu.Lock()
		defer mu.Unlock()
		if _, err := w.Write([]byte(frame)); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	if err := write(feed.FormatEvent("connected", "ok")); err != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	var wg sync.WaitGroup
	wg.Go(func() {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := write(feed.Heartbeat); err != nil {
					cancel()
					return
				}
			}
		}
	})

	_ = h.feed.Serve(ctx, c.RealIP(), feed.TransportSSE, func(points []feed.Point) error {
		data, err := json.Marshal(points)
		if err != nil {
			return err
		}
		return write(feed.FormatEvent("metrics", string(data)))
	})

	cancel()
	wg.Wait()
	return nil
}

// Clients lists the open feed connections.
func (h *FeedHandlers) Clients(c echo.Context) error {
	return c.JSON(http.StatusOK, h.feed.Hub().Clients())
}
