package repository

import (
	"bytes"
	"context"
	"io"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FileStorage хранит вложения и аватарки в GridFS (bucket fs)
type FileStorage struct {
	db *mongo.Database
}

func NewFileStorage(db *mongo.Database) *FileStorage {
	return &FileStorage{
		db: db,
	}
}

// bucket открывается на каждый вызов: дедлайны хранятся в самом bucket
func (s *FileStorage) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return nil, errors.Wrap(err, "open GridFS bucket")
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return bucket, nil
}

// Upload сохраняет файл; content type кладётся в metadata
func (s *FileStorage) Upload(ctx context.Context, file *entity.Attachment) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: file.ContentType}})

	bucket, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	id, err := bucket.UploadFromStream(file.FileName, bytes.NewReader(file.Data), opts)
	if err != nil {
		return "", errors.Wrapf(err, "upload file %s", file.FileName)
	}

	return id.Hex(), nil
}

func (s *FileStorage) Open(ctx context.Context, id string) (*entity.StoredFile, io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, nil
	}

	bucket, err := s.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}

	stream, err := bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrapf(err, "open file %s", id)
	}

	meta := stream.GetFile()
	stored := &entity.StoredFile{
		ID:          id,
		FileName:    meta.Name,
		ContentType: "application/octet-stream",
		Size:        meta.Length,
	}
	if meta.Metadata != nil {
		if ct, ok := meta.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			stored.ContentType = ct
		}
	}

	return stored, stream, nil
}

func (s *FileStorage) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return gridfs.ErrFileNotFound
	}
	bucket, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if err := bucket.Delete(oid); err != nil {
		return errors.Wrapf(err, "delete file %s", id)
	}
	return nil
}
