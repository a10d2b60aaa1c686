package app

import (
	"context"
	"sync"
	"time"

	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// DefaultDebounce is the quiet period after the last input change.
const DefaultDebounce = 500 * time.Millisecond

// QuoteUpdate is delivered to session subscribers. A nil Quote with a nil
// Err means the input was cleared or is not quotable yet.
type QuoteUpdate struct {
	Request    domain.QuoteRequest
	Quote      *domain.Quote
	Err        error
	Generation uint64
}

// Session debounces user input into quote requests. Each input change
// bumps the generation and cancels the in-flight request; results from an
// older generation are dropped.
type Session struct {
	quoter   Quoter
	debounce time.Duration
	notifier notify.Notifier
	log      logger.LoggerInterface

	base      context.Context
	closeBase context.CancelFunc

	mu      sync.Mutex
	gen     uint64
	req     domain.QuoteRequest
	current *domain.Quote
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool

	subsMu sync.RWMutex
	subs   map[int]func(QuoteUpdate)
	nextID int
}

// NewSession creates a session. A zero debounce uses DefaultDebounce.
func NewSession(quoter Quoter, debounce time.Duration, notifier notify.Notifier, log logger.LoggerInterface) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	base, cancel := context.WithCancel(context.Background())
	return &Session{
		quoter:    quoter,
		debounce:  debounce,
		notifier:  notifier,
		log:       log,
		base:      base,
		closeBase: cancel,
		subs:      make(map[int]func(QuoteUpdate)),
	}
}

// SetInput replaces the request. The current quote is cleared at once and
// a new quote is requested after the debounce period.
func (s *Session) SetInput(req domain.QuoteRequest) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.req = req
	s.current = nil
	s.timer = time.AfterFunc(s.debounce, func() { s.run(gen) })
	s.mu.Unlock()

	s.broadcast(QuoteUpdate{Request: req, Generation: gen})
}

// Requote re-runs the current request immediately, e.g. after prices expire.
func (s *Session) Requote() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.run(gen)
}

func (s *Session) run(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	req := s.req
	s.mu.Unlock()
	defer cancel()

	q, err := s.quoter.Quote(ctx, req)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		s.log.Debug(ctx, "dropping stale quote", "generation", gen)
		return
	}
	s.current = q
	s.cancel = nil
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(ctx, "quote failed", "in", symbolOf(req.In), "out", symbolOf(req.Out), "error", err)
		s.notifier.Notify(ctx, notify.New(notify.LevelError, "Quote", apperror.UserMessage(err)))
	}
	s.broadcast(QuoteUpdate{Request: req, Quote: q, Err: err, Generation: gen})
}

// Current returns the latest applied quote, or nil.
func (s *Session) Current() *domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Request returns the latest input.
func (s *Session) Request() domain.QuoteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// Subscribe registers fn for quote updates and returns an unsubscribe func.
func (s *Session) Subscribe(fn func(QuoteUpdate)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Close stops the timer and cancels any request in flight.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()
	s.closeBase()
	return nil
}

func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) broadcast(u QuoteUpdate) {
	s.subsMu.RLock()
	fns := make([]func(QuoteUpdate), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.RUnlock()

	for _, fn := range fns {
		fn(u)
	}
}

func symbolOf(t *asset.Token) string {
	if t == nil {
		return ""
	}
	return t.Symbol()
}
