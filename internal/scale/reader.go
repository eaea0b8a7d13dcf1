package scale

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
)

// rawLogCapacity bounds the diagnostic line log shown to the operator.
const rawLogCapacity = 15

// Indicators terminate frames with CR, LF or both; treat any run as one break.
var lineBreak = regexp.MustCompile(`[\r\n]+`)

// Reader owns the connection to the measuring instrument. It runs one
// long-lived read loop over an exclusively-held stream, keeps the latest
// parsed weight, and retains a bounded newest-first log of raw lines.
//
// Start and Stop follow an explicit acquire/release discipline: starting
// while connected first stops and releases the existing stream, and Stop is
// safe to call at any time, including when already stopped.
type Reader struct {
	source service.LineSource
	stream io.ReadCloser
	cancel context.CancelFunc
	done   chan struct{}
	rawLog []string
	buffer string
	weight int64
	mu     sync.Mutex
}

// NewReader creates a reader over the given line source.
func NewReader(source service.LineSource) *Reader {
	if source == nil {
		panic("source cannot be nil")
	}
	return &Reader{source: source}
}

// Start opens the source and begins the read loop. Any previously held
// stream is released first. On failure the reader is left disconnected with
// the current weight reset to zero.
func (r *Reader) Start(cfg model.SerialConfig) error {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	stream, err := r.source.Open(cfg)
	if err != nil {
		r.weight = 0
		return fmt.Errorf("failed to open scale stream: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.stream = stream
	r.cancel = cancel
	r.done = done
	r.buffer = ""

	go r.loop(ctx, stream, done)

	slog.Info("scale connected", "baud", cfg.BaudRate, "parity", cfg.Parity)
	return nil
}

// Stop cancels the read loop and releases the stream. It blocks until the
// loop has exited and is idempotent.
func (r *Reader) Stop() {
	r.mu.Lock()
	stream := r.stream
	cancel := r.cancel
	done := r.done
	r.stream = nil
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		// Closing the stream unblocks a read in progress.
		_ = stream.Close()
	}
	if done != nil {
		<-done
	}

	r.mu.Lock()
	r.weight = 0
	r.buffer = ""
	r.mu.Unlock()
}

// Connected reports whether a read loop currently holds a stream.
func (r *Reader) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// CurrentWeight returns the most recent parsed weight in kg.
func (r *Reader) CurrentWeight() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.weight
}

// RawLog returns the retained raw indicator lines, newest first.
func (r *Reader) RawLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.rawLog))
	copy(out, r.rawLog)
	return out
}

// ClearRawLog empties the diagnostic log.
func (r *Reader) ClearRawLog() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rawLog = nil
}

func (r *Reader) loop(ctx context.Context, stream io.ReadCloser, done chan struct{}) {
	defer close(done)

	buf := make([]byte, 256)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			r.ingest(string(buf[:n]))
		}
		if err != nil {
			if ctx.Err() == nil {
				common.LogError(err, "scale stream ended", common.Fields{})
			}
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	// Self-cleanup when the stream died on its own; Stop already detached
	// the fields if it initiated the shutdown.
	r.mu.Lock()
	if r.stream == stream {
		_ = stream.Close()
		r.stream = nil
		r.cancel = nil
		r.done = nil
		r.weight = 0
		r.buffer = ""
	}
	r.mu.Unlock()
}

// ingest appends a chunk of bytes to the line buffer and processes every
// complete line. A trailing partial line stays buffered until the next chunk
// completes it.
func (r *Reader) ingest(chunk string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := lineBreak.Split(r.buffer+chunk, -1)
	r.buffer = parts[len(parts)-1]

	for _, line := range parts[:len(parts)-1] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.rawLog = append([]string{line}, r.rawLog...)
		if len(r.rawLog) > rawLogCapacity {
			r.rawLog = r.rawLog[:rawLogCapacity]
		}
		if w, ok := ParseWeight(line); ok {
			// Latest reading wins; no smoothing.
			r.weight = w
		}
	}
}

var _ service.WeightSource = (*Reader)(nil)
