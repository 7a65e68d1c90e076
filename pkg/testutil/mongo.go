package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	pkgmongo "github.com/letsema/mfi/pkg/mongodb"
)

// MongoContainer is a throwaway MongoDB instance with a connected client.
type MongoContainer struct {
	Container *mongodb.MongoDBContainer
	Client    *mongo.Client
	URI       string
}

// NewMongoContainer starts MongoDB. Cleanup is registered on t.
func NewMongoContainer(ctx context.Context, t *testing.T) *MongoContainer {
	t.Helper()

	c, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("start mongodb container: %v", err)
	}

	mc := &MongoContainer{Container: c}
	t.Cleanup(func() { mc.terminate(t) })

	mc.URI, err = c.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongodb connection string: %v", err)
	}

	mc.Client, err = pkgmongo.NewClient(ctx, pkgmongo.Config{URI: mc.URI})
	if err != nil {
		t.Fatalf("connect mongodb: %v", err)
	}
	return mc
}

// Database returns a database unique to the running test.
func (mc *MongoContainer) Database(t *testing.T) *mongo.Database {
	t.Helper()
	return mc.Client.Database(fmt.Sprintf("letsema_%d", time.Now().UnixNano()))
}

func (mc *MongoContainer) terminate(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if mc.Client != nil {
		_ = mc.Client.Disconnect(ctx)
	}
	if err := mc.Container.Terminate(ctx); err != nil {
		t.Logf("terminate mongodb container: %v", err)
	}
}
