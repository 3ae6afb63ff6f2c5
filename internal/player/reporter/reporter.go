// Package reporter buffers proof-of-play events and delivers them in
// batches, at least once. Nothing is dropped on a failed flush: the batch
// goes back to the front of the buffer and rides along with the next one.
package reporter

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
)

// DefaultFlushInterval matches the upstream report cadence.
const DefaultFlushInterval = 30 * time.Second

// Sender delivers one batch. Device mode wraps the batch with the device's
// credentials; web mode posts it bare under the ambient session.
type Sender interface {
	SendLogs(ctx context.Context, logs []devicepackets.PlayLogEntry) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, logs []devicepackets.PlayLogEntry) error

func (f SenderFunc) SendLogs(ctx context.Context, logs []devicepackets.PlayLogEntry) error {
	return f(ctx, logs)
}

type Reporter struct {
	mu     sync.Mutex
	buffer []devicepackets.PlayLogEntry
	sender Sender
}

func New(sender Sender) *Reporter {
	return &Reporter{sender: sender}
}

// Append records one playback event.
func (r *Reporter) Append(entry devicepackets.PlayLogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, entry)
}

// Len reports how many events are waiting. Exposed for the debug overlay.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Flush delivers everything buffered so far as one batch. New events may
// accumulate while delivery is in flight; on failure the undelivered batch
// is prepended back ahead of them, preserving original order.
func (r *Reporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	if len(r.buffer) == 0 {
		r.mu.Unlock()
		return nil
	}
	snapshot := r.buffer
	r.buffer = nil
	r.mu.Unlock()

	if err := r.sender.SendLogs(ctx, snapshot); err != nil {
		r.mu.Lock()
		r.buffer = append(snapshot, r.buffer...)
		r.mu.Unlock()
		log.Warn().Err(err).Int("buffered", len(snapshot)).Msg("log flush failed, re-buffered")
		return err
	}

	log.Debug().Int("delivered", len(snapshot)).Msg("play logs flushed")
	return nil
}

// Run flushes on a fixed interval until ctx is cancelled, with one final
// best-effort flush on the way out.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = r.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			_ = r.Flush(ctx)
		}
	}
}
