package downloader

import (
	"context"
	"io"
	"sync/atomic"
	"time"
)

// ProgressSink receives download lifecycle events. Implementations render to
// a terminal; the downloader never writes to stdout/stderr itself.
type ProgressSink interface {
	BeginItem(index, total int, title string, size int64)
	Progress(written, size int64)
	EndItem(result DownloadResult)
	Log(level LogLevel, msg string)
	Summary(total, ok, failed, skipped int, bytes int64)
}

// progressWriter forwards byte counts to the sink, throttled so rendering
// never dominates the copy loop.
type progressWriter struct {
	size       int64
	total      atomic.Int64
	lastUpdate atomic.Int64 // Unix nanoseconds
	sink       ProgressSink
}

func newProgressWriter(size int64, sink ProgressSink) *progressWriter {
	pw := &progressWriter{size: size, sink: sink}
	pw.lastUpdate.Store(time.Now().UnixNano())
	return pw
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n := len(b)
	total := p.total.Add(int64(n))

	// At most ten updates per second.
	now := time.Now().UnixNano()
	last := p.lastUpdate.Load()
	if now-last >= 100*time.Millisecond.Nanoseconds() {
		if p.lastUpdate.CompareAndSwap(last, now) {
			p.sink.Progress(total, p.size)
		}
	}
	return n, nil
}

func (p *progressWriter) Finish() {
	p.sink.Progress(p.total.Load(), p.size)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
		return r.r.Read(p)
	}
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	reader := &contextReader{ctx: ctx, r: src}
	return io.Copy(dst, reader)
}

// sleepWithContext sleeps for the given duration, returning early if the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
