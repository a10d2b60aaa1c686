package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fd1az/aptos-dex/business/swap/app"
	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// scriptQuoter echoes the request amount. A request whose amount has a
// gate blocks until the gate is closed or its context ends.
type scriptQuoter struct {
	mu      sync.Mutex
	calls   []string
	gates   map[string]chan struct{}
	entered chan string
	err     error
}

func (q *scriptQuoter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	q.mu.Lock()
	q.calls = append(q.calls, req.Amount)
	gate := q.gates[req.Amount]
	q.mu.Unlock()

	if q.entered != nil {
		q.entered <- req.Amount
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if q.err != nil {
		return nil, q.err
	}
	return &domain.Quote{InputAmount: req.Amount}, nil
}

func (q *scriptQuoter) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

type updates struct {
	mu  sync.Mutex
	got []app.QuoteUpdate
	ch  chan app.QuoteUpdate
}

func newUpdates() *updates { return &updates{ch: make(chan app.QuoteUpdate, 16)} }

func (u *updates) record(up app.QuoteUpdate) {
	u.mu.Lock()
	u.got = append(u.got, up)
	u.mu.Unlock()
	u.ch <- up
}

// next waits for the next update that carries a result.
func (u *updates) next(t *testing.T) app.QuoteUpdate {
	t.Helper()
	for {
		select {
		case up := <-u.ch:
			if up.Quote != nil || up.Err != nil {
				return up
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for quote update")
			return app.QuoteUpdate{}
		}
	}
}

type notes struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (n *notes) Notify(_ context.Context, note notify.Notification) {
	n.mu.Lock()
	n.got = append(n.got, note)
	n.mu.Unlock()
}

func (n *notes) all() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.got...)
}

func quoteReq(amount string) domain.QuoteRequest {
	return domain.QuoteRequest{In: asset.APT, Out: asset.USDC, Amount: amount}
}

func TestSessionDebounce(t *testing.T) {
	quoter := &scriptQuoter{}
	s := app.NewSession(quoter, 20*time.Millisecond, nil, testLogger())
	defer s.Close()

	ups := newUpdates()
	s.Subscribe(ups.record)

	s.SetInput(quoteReq("1"))
	s.SetInput(quoteReq("12"))
	s.SetInput(quoteReq("123"))

	up := ups.next(t)
	if up.Quote.InputAmount != "123" {
		t.Errorf("applied quote for %q, want 123", up.Quote.InputAmount)
	}
	if n := quoter.callCount(); n != 1 {
		t.Errorf("expected 1 quote request after debounce, got %d", n)
	}
	if got := s.Current(); got == nil || got.InputAmount != "123" {
		t.Errorf("Current() = %+v", got)
	}
}

func TestSessionInputClearsQuote(t *testing.T) {
	quoter := &scriptQuoter{}
	s := app.NewSession(quoter, 10*time.Millisecond, nil, testLogger())
	defer s.Close()

	ups := newUpdates()
	s.Subscribe(ups.record)

	s.SetInput(quoteReq("1"))
	ups.next(t)

	s.SetInput(quoteReq("2"))
	if s.Current() != nil {
		t.Error("expected quote to be cleared on input change")
	}
}

func TestSessionDropsStaleResult(t *testing.T) {
	slow := make(chan struct{})
	quoter := &scriptQuoter{
		gates:   map[string]chan struct{}{"1": slow},
		entered: make(chan string, 4),
	}
	s := app.NewSession(quoter, time.Millisecond, nil, testLogger())
	defer s.Close()

	ups := newUpdates()
	s.Subscribe(ups.record)

	s.SetInput(quoteReq("1"))
	if got := <-quoter.entered; got != "1" {
		t.Fatalf("first request for %q", got)
	}

	// The second input cancels the first request; its result must never land.
	s.SetInput(quoteReq("2"))
	close(slow)

	up := ups.next(t)
	if up.Quote == nil || up.Quote.InputAmount != "2" {
		t.Fatalf("expected the latest quote, got %+v", up)
	}

	ups.mu.Lock()
	defer ups.mu.Unlock()
	for _, u := range ups.got {
		if u.Quote != nil && u.Quote.InputAmount == "1" {
			t.Error("stale quote was applied")
		}
		if u.Err != nil {
			t.Errorf("stale error was applied: %v", u.Err)
		}
	}
}

func TestSessionErrorNotifies(t *testing.T) {
	quoter := &scriptQuoter{err: apperror.New(apperror.CodePriceUnavailable)}
	n := &notes{}
	s := app.NewSession(quoter, time.Millisecond, n, testLogger())
	defer s.Close()

	ups := newUpdates()
	s.Subscribe(ups.record)

	s.SetInput(quoteReq("1"))
	up := ups.next(t)
	if apperror.GetCode(up.Err) != apperror.CodePriceUnavailable {
		t.Errorf("update error = %v", up.Err)
	}

	got := n.all()
	if len(got) != 1 || got[0].Level != notify.LevelError {
		t.Fatalf("notifications = %+v", got)
	}
}

func TestSessionClose(t *testing.T) {
	quoter := &scriptQuoter{}
	s := app.NewSession(quoter, 20*time.Millisecond, nil, testLogger())

	s.SetInput(quoteReq("1"))
	s.Close()
	time.Sleep(60 * time.Millisecond)

	if n := quoter.callCount(); n != 0 {
		t.Errorf("expected no request after Close, got %d", n)
	}
}
