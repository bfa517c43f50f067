package events

import (
	"context"

	"github.com/tfc-warehouse/putaway-backend/internal/putaway/service"
	"github.com/tfc-warehouse/putaway-backend/pkg/logger"
	"github.com/tfc-warehouse/putaway-backend/pkg/messaging"
)

// Exchange and event names for the putaway event stream.
const (
	ExchangePutawayEvents = "putaway.events"

	EventTransferCompleted = "putaway.transfer.completed"
	EventTransferCommitted = "putaway.transfer.committed"
)

// TransferEventPublisher publishes transfer events after commit. The batch
// job and dashboards subscribe; the audit rows remain the durable contract.
type TransferEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewTransferEventPublisher creates a new transfer event publisher
func NewTransferEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TransferEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, ExchangePutawayEvents, "putaway-service", log)
	if err != nil {
		return nil, err
	}

	return &TransferEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// TransferCompleted publishes the post-commit event for either path.
// Best effort: the transfer has already committed, so failures are logged
// and swallowed.
func (p *TransferEventPublisher) TransferCompleted(ctx context.Context, ev *service.TransferEvent) {
	eventType := EventTransferCompleted
	if ev.Committed {
		eventType = EventTransferCommitted
	}

	if err := p.publisher.Publish(ctx, eventType, ev); err != nil {
		p.logger.Warn().
			Err(err).
			Str("document_no", ev.DocumentNo).
			Msg("failed to publish transfer event")
	}
}
