package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/config"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

// Dispatcher delivers consent status events to the partner webhook endpoint
// asynchronously. Delivery is best effort: failures are logged and retried a
// bounded number of times, and never propagate to the operation that
// produced the event. When the queue is full the event is dropped with a
// warning rather than blocking the caller.
type Dispatcher struct {
	cfg    config.WebhookConfig
	client *http.Client
	logger *logrus.Logger
	queue  chan models.ConsentStatusEvent
	wg     sync.WaitGroup
	stop   chan struct{}
}

// NewDispatcher creates a new webhook Dispatcher
func NewDispatcher(cfg config.WebhookConfig, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		queue:  make(chan models.ConsentStatusEvent, cfg.QueueSize),
		stop:   make(chan struct{}),
	}
}

// Start launches the delivery worker
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop drains in-flight deliveries and shuts the worker down
func (d *Dispatcher) Stop() {
	close(d.stop)
	d.wg.Wait()
}

// NotifyConsentStatus enqueues an event for delivery. Never blocks.
func (d *Dispatcher) NotifyConsentStatus(event models.ConsentStatusEvent) {
	if !d.cfg.Enabled {
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.WithFields(logrus.Fields{
			"consentId": event.ConsentID,
			"newStatus": event.NewStatus,
		}).Warn("Webhook queue full, dropping consent status event")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.stop:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event models.ConsentStatusEvent) {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.RetryAttempts; attempt++ {
		if lastErr = d.post(event); lastErr == nil {
			d.logger.WithFields(logrus.Fields{
				"consentId": event.ConsentID,
				"newStatus": event.NewStatus,
			}).Debug("Consent status event delivered")
			return
		}

		d.logger.WithError(lastErr).WithFields(logrus.Fields{
			"consentId": event.ConsentID,
			"attempt":   attempt,
		}).Warn("Webhook delivery failed")

		if attempt < d.cfg.RetryAttempts {
			select {
			case <-time.After(d.cfg.RetryBackoff):
			case <-d.stop:
				return
			}
		}
	}

	d.logger.WithError(lastErr).WithFields(logrus.Fields{
		"consentId": event.ConsentID,
		"newStatus": event.NewStatus,
	}).Error("Giving up on consent status event delivery")
}

func (d *Dispatcher) post(event models.ConsentStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier discards all events. Used when webhook dispatch is disabled.
type NoopNotifier struct{}

// NotifyConsentStatus implements the notifier contract as a no-op.
func (NoopNotifier) NotifyConsentStatus(models.ConsentStatusEvent) {}
