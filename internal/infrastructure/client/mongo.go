package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoClient подключается к MongoDB и проверяет соединение
func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	return &MongoClient{
		Client:   client,
		Database: client.Database(database),
	}, nil
}

// HealthCheck проверяет доступность MongoDB
func (c *MongoClient) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx, readpref.Primary())
}

func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Disconnect(ctx)
}
