// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package feed

import (
	"strings"
	"time"
)

// Heartbeat is an SSE comment frame. Clients ignore it; proxies see traffic.
const Heartbeat = ": heartbeat\n\n"

// HeartbeatInterval is the default delay between two heartbeats on an idle stream.
const HeartbeatInterval = 15 * time.Second

// FormatEvent renders an SSE frame. Each line of data gets its own "data:" field.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder

	if eventName != "" {
		sb.WriteString("event: ")
		sb.WriteString(eventName)
		sb.WriteByte('\n')
	}

	for line := range strings.SplitSeq(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	return sb.String()
}
