package repository

import (
	"context"
	"time"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const remarksCollection = "remarks"

type remarkDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TaskID      int                `bson:"task_id"`
	Comment     string             `bson:"comment"`
	CommentedBy int                `bson:"commented_by"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   *time.Time         `bson:"updated_at,omitempty"`
	FileID      *string            `bson:"file_id,omitempty"`
	FileName    *string            `bson:"filename,omitempty"`
}

func (d *remarkDocument) toEntity() *entity.Remark {
	return &entity.Remark{
		ID:          d.ID.Hex(),
		TaskID:      d.TaskID,
		Comment:     d.Comment,
		CommentedBy: d.CommentedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		FileID:      d.FileID,
		FileName:    d.FileName,
	}
}

type RemarkRepository struct {
	collection *mongo.Collection
}

func NewRemarkRepository(db *mongo.Database) *RemarkRepository {
	return &RemarkRepository{
		collection: db.Collection(remarksCollection),
	}
}

func (r *RemarkRepository) Create(ctx context.Context, remark *entity.Remark) (*entity.Remark, error) {
	doc := remarkDocument{
		TaskID:      remark.TaskID,
		Comment:     remark.Comment,
		CommentedBy: remark.CommentedBy,
		CreatedAt:   remark.CreatedAt,
		FileID:      remark.FileID,
		FileName:    remark.FileName,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "insert remark")
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}

	return doc.toEntity(), nil
}

// GetByID - некорректный ObjectID трактуется как отсутствие записи
func (r *RemarkRepository) GetByID(ctx context.Context, id string) (*entity.Remark, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc remarkDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get remark %s", id)
	}

	return doc.toEntity(), nil
}

// ListByTask - замечания по задаче в порядке создания
func (r *RemarkRepository) ListByTask(ctx context.Context, taskID int) ([]entity.Remark, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "list remarks of task %d", taskID)
	}
	defer cursor.Close(ctx)

	remarks := []entity.Remark{}
	for cursor.Next(ctx) {
		var doc remarkDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode remark")
		}
		remarks = append(remarks, *doc.toEntity())
	}

	return remarks, cursor.Err()
}

// Update - $set по переданным полям (comment, file_id, filename, updated_at)
func (r *RemarkRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Remark, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{}
	for field, value := range updates {
		set[field] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc remarkDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "update remark %s", id)
	}

	return doc.toEntity(), nil
}

func (r *RemarkRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrapf(err, "delete remark %s", id)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
