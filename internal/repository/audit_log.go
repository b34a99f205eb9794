package repository

import (
	"context"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

const auditLogsCollection = "logs"

type AuditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) *AuditLogRepository {
	return &AuditLogRepository{
		collection: db.Collection(auditLogsCollection),
	}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return errors.Wrapf(err, "insert audit log %s", entry.Action)
	}
	return nil
}
