package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/config"
	"github.com/portkey-logistics/portkey/internal/events"
)

// CacheInvalidator drops cached aggregates touched by a shipment write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, ownerID string) error
}

// NotificationService reacts to shipment events.
type NotificationService struct {
	dispatcher events.Dispatcher
	dashboard  CacheInvalidator
	webhook    *resty.Client
	webhookURL string
	logger     *zap.Logger
	inflight   sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, dashboard CacheInvalidator, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &NotificationService{
		dispatcher: dispatcher,
		dashboard:  dashboard,
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		logger:     logger,
	}
	if n.webhookURL != "" {
		n.webhook = resty.New().
			SetTimeout(cfg.WebhookTimeout()).
			SetHeader("Content-Type", "application/json")
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventShipmentCreated, n.handleShipmentWrite)
	n.dispatcher.Subscribe(events.EventShipmentStatusChanged, n.handleShipmentWrite)
	n.dispatcher.Subscribe(events.EventShipmentDeleted, n.handleShipmentWrite)
	n.dispatcher.Subscribe(events.EventDocumentAttached, n.handleDocumentAttached)
	n.dispatcher.Subscribe(events.EventProfileRoleChanged, n.handleProfileChange)
	n.dispatcher.Subscribe(events.EventProfileDeleted, n.handleProfileChange)
}

func (n *NotificationService) handleShipmentWrite(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("shipment_id", event.ShipmentID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))

	var invalidateErr error
	if n.dashboard != nil {
		if err := n.dashboard.Invalidate(ctx, event.OwnerID); err != nil {
			invalidateErr = fmt.Errorf("invalidate dashboard cache: %w", err)
		}
	}
	n.sendWebhook(ctx, event)
	return invalidateErr
}

func (n *NotificationService) handleDocumentAttached(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("shipment_id", event.ShipmentID),
		zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

// handleProfileChange logs profile events. A deletion also drops the
// profile's dashboard scope, since its shipments went with it.
func (n *NotificationService) handleProfileChange(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("profile_id", event.OwnerID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))

	var invalidateErr error
	if n.dashboard != nil && event.Type == events.EventProfileDeleted {
		if err := n.dashboard.Invalidate(ctx, event.OwnerID); err != nil {
			invalidateErr = fmt.Errorf("invalidate dashboard cache: %w", err)
		}
	}
	n.sendWebhook(ctx, event)
	return invalidateErr
}

// sendWebhook delivers the event best-effort off the publishing goroutine.
// Failures are logged only.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if n.webhook == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		n.deliver(ctx, event)
	}()
}

// Wait blocks until every webhook delivery started so far has finished.
func (n *NotificationService) Wait() {
	n.inflight.Wait()
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event) {
	resp, err := n.webhook.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.webhookURL)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	if resp.IsError() {
		n.logger.Warn("webhook rejected event",
			zap.String("event_id", event.ID),
			zap.Int("status", resp.StatusCode()))
		return
	}
	n.logger.Debug("webhook delivered", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
}
