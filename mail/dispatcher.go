package mail

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Dispatcher bounds delivery attempts so that callers never wait on a slow provider beyond timeout
type Dispatcher struct {
	mailer      Mailer
	timeout     time.Duration
	maxAttempts uint
	wg          sync.WaitGroup
}

func NewDispatcher(mailer Mailer, timeout time.Duration, maxAttempts uint) *Dispatcher {
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	return &Dispatcher{
		mailer:      mailer,
		timeout:     timeout,
		maxAttempts: maxAttempts,
	}
}

// Send delivers msg, retrying with exponential backoff until it succeeds, attempts run out or the timeout passes
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, d.mailer.Send(ctx, msg)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(d.maxAttempts),
		backoff.WithMaxElapsedTime(d.timeout),
	)
	if err != nil {
		return errors.Wrapf(err, "[Dispatcher.Send] %q to %s", msg.Subject, msg.To)
	}
	return nil
}

// SendAsync delivers msg in the background, detached from the caller's cancellation. Failures are logged.
func (d *Dispatcher) SendAsync(ctx context.Context, msg Message) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Send(ctx, msg); err != nil {
			log.Err(err).Str("to", msg.To).Msg("email delivery failed")
		}
	}()
}

// Wait blocks until all background deliveries have finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
