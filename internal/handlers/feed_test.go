// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/feed"
	"codeberg.org/oliverandrich/account-service/internal/handlers"
	"codeberg.org/oliverandrich/account-service/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, interval time.Duration) (*httptest.Server, *feed.Feed) {
	t.Helper()
	f := feed.New(interval, nil, nil)
	h := handlers.NewFeed(f, []string{"http://allowed.test"})

	e := echo.New()
	e.GET("/ws", h.WebSocket)
	e.GET("/feed/events", h.Events)
	e.GET("/feed/clients", h.Clients)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, f
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWebSocketFeed(t *testing.T) {
	srv, f := newFeedServer(t, 20*time.Millisecond)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	for range 2 {
		var points []feed.Point
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&points))

		require.Len(t, points, len(feed.PageNames))
		for i, p := range points {
			assert.Equal(t, feed.PageNames[i], p.Name)
			assert.GreaterOrEqual(t, p.Sell, feed.MinSell)
			assert.LessOrEqual(t, p.Sell, feed.MaxSell)
		}
	}
	assert.Equal(t, 1, f.Hub().ClientCount())

	// Inbound messages are ignored.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return f.Hub().ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketFeed_Origin(t *testing.T) {
	srv, _ := newFeedServer(t, time.Second)

	t.Run("allowed origin", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), http.Header{"Origin": {"http://allowed.test"}})
		require.NoError(t, err)
		defer resp.Body.Close()
		_ = conn.Close()
	})

	t.Run("foreign origin", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), http.Header{"Origin": {"http://evil.test"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestEventsFeed(t *testing.T) {
	srv, f := newFeedServer(t, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/feed/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	scanner := bufio.NewScanner(resp.Body)
	var events []string
	var payload string
	for payload == "" && scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			events = append(events, strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: ") && len(events) == 2:
			payload = strings.TrimPrefix(line, "data: ")
		}
	}
	require.Equal(t, []string{"connected", "metrics"}, events)

	var points []feed.Point
	require.NoError(t, json.Unmarshal([]byte(payload), &points))
	assert.Len(t, points, len(feed.PageNames))
	assert.Equal(t, 1, f.Hub().ClientCount())

	cancel()
	assert.Eventually(t, func() bool {
		return f.Hub().ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventsFeed_Heartbeat(t *testing.T) {
	f := feed.New(time.Hour, nil, nil)
	h := handlers.NewFeed(f, nil).WithHeartbeat(10 * time.Millisecond)

	e := echo.New()
	e.GET("/feed/events", h.Events)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/feed/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The first payload goes out at once; the next would take an hour, so any
	// further traffic has to be heartbeats.
	scanner := bufio.NewScanner(resp.Body)
	heartbeats := 0
	for heartbeats < 2 && scanner.Scan() {
		if scanner.Text() == strings.TrimSpace(feed.Heartbeat) {
			heartbeats++
		}
	}
	assert.Equal(t, 2, heartbeats)

	cancel()
	assert.Eventually(t, func() bool {
		return f.Hub().ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFeedClients(t *testing.T) {
	f := feed.New(time.Second, nil, nil)
	client := f.Hub().Register("10.0.0.1", feed.TransportSSE)
	defer f.Hub().Unregister(client)

	h := handlers.NewFeed(f, nil)
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/feed/clients", nil)

	require.NoError(t, h.Clients(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var clients []feed.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "10.0.0.1", clients[0].RemoteAddr)
	assert.Equal(t, feed.TransportSSE, clients[0].Transport)
}
