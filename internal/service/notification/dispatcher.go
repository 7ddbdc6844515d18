// Package notification sends email outside the request lifecycle.
// Delivery is fire-and-forget: failures are logged and written to a
// failure log, never retried and never reported to the caller.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/user"
	"github.com/gorider/gorider-api/pkg/logger"
)

// Kinds of notification
const (
	KindReceipt   = "receipt"
	KindBroadcast = "broadcast"
)

var ErrQueueFull = errors.New("notification queue full")

// Message is a single email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message to a mail relay
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// FailureLog keeps undelivered notifications for inspection
type FailureLog interface {
	Push(ctx context.Context, entry interface{}) error
}

// Recipients enumerates every known user
type Recipients interface {
	List(ctx context.Context) ([]user.User, error)
}

// FailureRecorder counts failures in APM
type FailureRecorder interface {
	RecordNotificationFailure(kind string)
}

// Failure is the entry written to the failure log
type Failure struct {
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient,omitempty"`
	Subject   string    `json:"subject"`
	Error     string    `json:"error"`
	At        time.Time `json:"at"`
}

// Config controls the worker pool
type Config struct {
	Workers   int
	QueueSize int
}

type job struct {
	kind      string
	msg       Message
	broadcast bool
}

// Dispatcher runs a fixed pool of workers draining a bounded queue
type Dispatcher struct {
	sender     Sender
	recipients Recipients
	failures   FailureLog
	recorder   FailureRecorder
	logger     *logger.Logger

	workers int
	jobs    chan job
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a dispatcher. failures and recorder may be nil.
func NewDispatcher(sender Sender, recipients Recipients, failures FailureLog, recorder FailureRecorder, log *logger.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Dispatcher{
		sender:     sender,
		recipients: recipients,
		failures:   failures,
		recorder:   recorder,
		logger:     log.Named("notification"),
		workers:    cfg.Workers,
		jobs:       make(chan job, cfg.QueueSize),
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	d.logger.Info("Notification dispatcher started", logger.Int("workers", d.workers))
}

// Close stops accepting work and waits for queued messages to drain
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

// SendReceipt queues a payment receipt for recipient
func (d *Dispatcher) SendReceipt(recipient string, p payment.Payment) {
	d.enqueue(job{kind: KindReceipt, msg: ReceiptMessage(recipient, p)})
}

// BroadcastToAllUsers queues one message per known user. Recipients are
// enumerated by the worker so the caller never waits on the user list.
func (d *Dispatcher) BroadcastToAllUsers(subject, body string) {
	d.enqueue(job{kind: KindBroadcast, broadcast: true, msg: Message{Subject: subject, Body: body}})
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.fail(context.Background(), j.kind, j.msg, errors.New("dispatcher closed"))
		return
	}

	select {
	case d.jobs <- j:
	default:
		d.fail(context.Background(), j.kind, j.msg, ErrQueueFull)
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.jobs {
		ctx := context.Background()
		if j.broadcast {
			d.fanOut(ctx, j)
			continue
		}
		d.deliver(ctx, j.kind, j.msg)
	}
}

// fanOut sends to every user independently; one failed recipient does not
// stop delivery to the rest.
func (d *Dispatcher) fanOut(ctx context.Context, j job) {
	users, err := d.recipients.List(ctx)
	if err != nil {
		d.fail(ctx, j.kind, j.msg, err)
		return
	}

	sent := 0
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		msg := j.msg
		msg.To = u.Email
		if d.deliver(ctx, j.kind, msg) {
			sent++
		}
	}

	d.logger.Info("Broadcast delivered",
		logger.String("subject", j.msg.Subject),
		logger.Int("recipients", len(users)),
		logger.Int("sent", sent),
	)
}

func (d *Dispatcher) deliver(ctx context.Context, kind string, msg Message) bool {
	if err := d.sender.Send(ctx, msg); err != nil {
		d.fail(ctx, kind, msg, err)
		return false
	}
	return true
}

func (d *Dispatcher) fail(ctx context.Context, kind string, msg Message, cause error) {
	d.logger.Error("Notification not delivered",
		logger.String("kind", kind),
		logger.String("recipient", msg.To),
		logger.String("subject", msg.Subject),
		logger.Err(cause),
	)
	if d.recorder != nil {
		d.recorder.RecordNotificationFailure(kind)
	}
	if d.failures == nil {
		return
	}
	entry := Failure{
		Kind:      kind,
		Recipient: msg.To,
		Subject:   msg.Subject,
		Error:     cause.Error(),
		At:        time.Now().UTC(),
	}
	if err := d.failures.Push(ctx, entry); err != nil {
		d.logger.Warn("Failed to write notification failure log", logger.Err(err))
	}
}
