package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/St1cky1/task-tracker/internal/metrics"
	"github.com/St1cky1/task-tracker/internal/repository"
)

const auditTimeout = 2 * time.Second

// AuditPublisher - публикация записей аудита в очередь (RabbitMQ)
type AuditPublisher interface {
	PublishAuditLog(ctx context.Context, entry *entity.AuditLog) error
}

// AuditRecorder пишет журнал действий. Сначала в очередь, при ошибке напрямую
// в хранилище. Ошибки только логируются: аудит не влияет на результат операции.
type AuditRecorder struct {
	publisher AuditPublisher
	store     repository.IAuditLogRepository
	now       func() time.Time
}

// NewAuditRecorder - publisher и store могут быть nil
func NewAuditRecorder(publisher AuditPublisher, store repository.IAuditLogRepository) *AuditRecorder {
	return &AuditRecorder{
		publisher: publisher,
		store:     store,
		now:       time.Now,
	}
}

// Record - nil recorder ничего не делает
func (a *AuditRecorder) Record(ctx context.Context, action, entityType string, entityID, performedBy int) {
	if a == nil {
		return
	}

	entry := &entity.AuditLog{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		PerformedBy: performedBy,
		Timestamp:   a.now().UTC(),
	}

	// запрос мог уже завершиться, аудит пишем с собственным таймаутом
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	logger := log.GetLogger().WithField("action", action).WithField("entity_id", entityID)

	if a.publisher != nil {
		err := a.publisher.PublishAuditLog(ctx, entry)
		if err == nil {
			return
		}
		logger.WithError(err).Warn("audit publish failed, writing directly")
	}

	if a.store == nil {
		metrics.AuditFailuresTotal.Inc()
		logger.Error("audit entry dropped: no store configured")
		return
	}

	if err := a.store.Create(ctx, entry); err != nil {
		metrics.AuditFailuresTotal.Inc()
		logger.WithError(err).Error("audit entry dropped")
	}
}
