package mpesa

import (
	"context"
	"log"
	"sync"
	"time"
)

// StatusChecker is the slice of the gateway client the poller needs.
type StatusChecker interface {
	PaymentStatus(ctx context.Context, checkoutRequestID string) (string, error)
}

// Outcome is the terminal result of one polling run.
type Outcome struct {
	Success bool
	// TimedOut is set when the attempt cap elapsed without a terminal
	// gateway status.
	TimedOut bool
	// Message is the buyer-facing failure description. Empty on success.
	Message string
}

// Poller drives the repeating status check for a pending transaction.
// At most one polling loop is live per Poller: Start cancels any
// previous run before beginning a new one, and results from a cancelled
// run are discarded by generation check.
type Poller struct {
	checker     StatusChecker
	interval    time.Duration
	maxAttempts int
	logger      *log.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewPoller(checker StatusChecker, interval time.Duration, maxAttempts int, logger *log.Logger) *Poller {
	return &Poller{
		checker:     checker,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Start begins polling the given correlation id, replacing any run
// already in flight. onDone is invoked exactly once, from the polling
// goroutine, unless the run is cancelled first.
func (p *Poller) Start(ctx context.Context, checkoutRequestID string, onDone func(Outcome)) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(pollCtx, gen, checkoutRequestID, onDone)
}

// Cancel stops the live polling loop, if any. It is safe to call at any
// time, including after the loop has already finished.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller) run(ctx context.Context, gen uint64, checkoutRequestID string, onDone func(Outcome)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempts := 1; ; attempts++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.checker.PaymentStatus(ctx, checkoutRequestID)
		if err != nil {
			if attempts >= p.maxAttempts {
				p.deliver(gen, onDone, Outcome{Message: "could not verify payment status"})
				return
			}
			// Transient errors are tolerated; the next tick retries.
			if p.logger != nil {
				p.logger.Printf("poll %s attempt %d: %v", checkoutRequestID, attempts, err)
			}
			continue
		}

		switch status {
		case StatusSuccess:
			p.deliver(gen, onDone, Outcome{Success: true})
			return
		case StatusFailed:
			p.deliver(gen, onDone, Outcome{Message: "payment failed"})
			return
		default:
			if attempts >= p.maxAttempts {
				p.deliver(gen, onDone, Outcome{TimedOut: true, Message: "payment confirmation timed out"})
				return
			}
		}
	}
}

// deliver hands the outcome to the callback only when this run is still
// the current generation. A stale run that raced a newer Start loses.
func (p *Poller) deliver(gen uint64, onDone func(Outcome), out Outcome) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	onDone(out)
}
