package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/smart-energy/internal/infra/config"
	"github.com/yanqian/smart-energy/pkg/metrics"
)

const (
	maxReplayBody       = 1 << 20 // 1 MiB
	attemptsHeader      = "X-Attempts"
	maxBackoffDoublings = 6
)

var errReplayBodyTooLarge = errors.New("request body too large to replay")

// retrier replays POST requests whose attempt ended in a 5xx. Each attempt is
// buffered so the client only sees the last one. Statement exports are the
// motivating case: the object store can fail transiently and a re-export
// overwrites the same key.
type retrier struct {
	next     http.Handler
	attempts int
	backoff  time.Duration
	excluded []string
	logger   *slog.Logger
}

// withRetry wraps next unless retries are disabled. Paths ending in one of
// cfg.Exclude are never replayed.
func withRetry(next http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return next
	}
	return &retrier{
		next:     next,
		attempts: cfg.MaxAttempts,
		backoff:  cfg.BaseBackoff,
		excluded: append([]string(nil), cfg.Exclude...),
		logger:   logger.With("component", "http.retry"),
	}
}

func (rt *retrier) replayable(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	for _, suffix := range rt.excluded {
		if strings.HasSuffix(r.URL.Path, suffix) {
			return false
		}
	}
	return true
}

// delay is the wait before the given attempt (2-based), doubling each time.
func (rt *retrier) delay(attempt int) time.Duration {
	shift := attempt - 2
	if shift > maxBackoffDoublings {
		shift = maxBackoffDoublings
	}
	return rt.backoff << shift
}

func (rt *retrier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !rt.replayable(r) {
		rt.next.ServeHTTP(w, r)
		return
	}
	body, err := bufferBody(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errReplayBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	for attempt := 1; ; attempt++ {
		if attempt > 1 && !sleepCtx(r, rt.delay(attempt)) {
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
		buf := newBufferedResponse()
		replay := r.Clone(r.Context())
		replay.Body = io.NopCloser(bytes.NewReader(body))
		replay.ContentLength = int64(len(body))
		rt.next.ServeHTTP(buf, replay)

		if buf.status < http.StatusInternalServerError || attempt == rt.attempts {
			if attempt > 1 {
				buf.header.Set(attemptsHeader, strconv.Itoa(attempt))
			}
			buf.copyTo(w)
			return
		}
		metrics.HTTPRetriesTotal.WithLabelValues(r.Method).Inc()
		rt.logger.Warn("replaying request after server error",
			"path", r.URL.Path, "status", buf.status, "attempt", attempt, "maxAttempts", rt.attempts)
	}
}

func sleepCtx(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return r.Context().Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxReplayBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxReplayBody {
		return nil, errReplayBodyTooLarge
	}
	return data, nil
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	sent   bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if !b.sent {
		b.status = status
		b.sent = true
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.sent = true
	return b.body.Write(p)
}

// Flush is a no-op; gin probes for http.Flusher.
func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) copyTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
