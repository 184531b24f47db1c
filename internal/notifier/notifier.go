// Package notifier announces committed transactions to the external
// transaction-history service.
//
// Delivery is best-effort: every failure is logged and dropped, the ledger
// of record is the local database.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/go-petr/bank-backoffice/internal/domain"
)

// DefaultTimeout bounds a single call to the history service.
const DefaultTimeout = 2 * time.Second

// Notifier fires transaction events without waiting for delivery.
type Notifier interface {
	Notify(ctx context.Context, event domain.TransactionEvent)
	// Wait blocks until in-flight notifications finish or ctx is done.
	// Events notified after Wait was called are dropped.
	Wait(ctx context.Context) error
}

// New returns an HTTP notifier posting to url, or a Nop notifier when url is empty.
func New(url string, timeout time.Duration) Notifier {
	if url == "" {
		return Nop{}
	}

	return NewHTTP(url, timeout, http.DefaultClient)
}

// Nop drops every event.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, domain.TransactionEvent) {}

// Wait returns immediately.
func (Nop) Wait(context.Context) error { return nil }

type payload struct {
	AccountID int64       `json:"accountId"`
	Type      string      `json:"type"`
	Amount    json.Number `json:"amount"`
	Details   string      `json:"details"`
}

// HTTP posts events as JSON to the history service.
type HTTP struct {
	url     string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker

	// mu orders wg.Add against draining.
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

// NewHTTP returns HTTP notifier. A non-positive timeout means DefaultTimeout.
func NewHTTP(url string, timeout time.Duration, client *http.Client) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	settings := gobreaker.Settings{
		Name:        "transaction-history",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &HTTP{
		url:     url,
		timeout: timeout,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Notify sends the event in the background. The call outlives ctx
// cancellation but keeps its values, the request logger included.
func (n *HTTP) Notify(ctx context.Context, event domain.TransactionEvent) {
	ctx = context.WithoutCancel(ctx)

	n.mu.Lock()
	if n.draining {
		n.mu.Unlock()
		zerolog.Ctx(ctx).Warn().
			Int64("account_id", event.AccountID).
			Str("type", event.Type).
			Str("amount", event.Amount.String()).
			Msg("transaction notification dropped, notifier is draining")

		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()

		l := zerolog.Ctx(ctx)

		_, err := n.breaker.Execute(func() (interface{}, error) {
			return nil, n.send(ctx, event)
		})
		if err != nil {
			l.Warn().Err(err).
				Int64("account_id", event.AccountID).
				Str("type", event.Type).
				Str("amount", event.Amount.String()).
				Msg("transaction notification dropped")

			return
		}

		l.Debug().Int64("account_id", event.AccountID).Str("type", event.Type).Msg("transaction notified")
	}()
}

func (n *HTTP) send(ctx context.Context, event domain.TransactionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body, err := json.Marshal(payload{
		AccountID: event.AccountID,
		Type:      event.Type,
		Amount:    json.Number(event.Amount.String()),
		Details:   event.Details,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("history service responded %s", res.Status)
	}

	return nil
}

// Wait stops accepting notifications and blocks until every notification
// started so far finishes or ctx is done.
func (n *HTTP) Wait(ctx context.Context) error {
	n.mu.Lock()
	n.draining = true
	n.mu.Unlock()

	done := make(chan struct{})

	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
