package repository

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reservio/pkg/client"
	"reservio/pkg/config"
)

func TestNewTableRepositoryUsesConfiguredDatabase(t *testing.T) {
	mc, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("mongo client init: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = mc.Disconnect(ctx)
	})

	cfg := &config.Config{
		MongoDatabaseName: "reservio_staging",
		Client:            &client.Client{Mongo: mc},
	}

	repo, ok := NewTableRepository(cfg).(*tableRepository)
	if !ok {
		t.Fatal("unexpected repository implementation")
	}

	if got := repo.collection.Database().Name(); got != "reservio_staging" {
		t.Errorf("repository ignores MongoDatabaseName: got %q", got)
	}
	if got := repo.collection.Name(); got != collectionName {
		t.Errorf("expected collection %q, got %q", collectionName, got)
	}
}
