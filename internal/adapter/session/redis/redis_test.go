//go:build integration

package redis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/linksplit/pkg/redis"
)

type StoreTestSuite struct {
	suite.Suite
	cont  testcontainers.Container
	store *Store
}

func (suite *StoreTestSuite) SetupSuite() {
	ctx := context.Background()

	var err error

	suite.cont, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		suite.T().Fatalf("Failed to start redis container: %v", err)
	}

	host, err := suite.cont.Host(ctx)
	if err != nil {
		suite.T().Fatalf("Failed to get container host: %v", err)
	}
	port, err := suite.cont.MappedPort(ctx, "6379")
	if err != nil {
		suite.T().Fatalf("Failed to get container port: %v", err)
	}

	client, err := redis.New(ctx, fmt.Sprintf("%s:%d", host, port.Int()))
	if err != nil {
		suite.T().Fatalf("Failed to connect to redis: %v", err)
	}
	suite.T().Cleanup(func() {
		client.Close()
	})

	suite.store = NewStore(client, time.Minute)
}

func (suite *StoreTestSuite) TearDownSuite() {
	if err := suite.cont.Terminate(context.Background()); err != nil {
		suite.T().Fatalf("Failed to terminate redis container: %v", err)
	}
}

func (suite *StoreTestSuite) TestPutTake() {
	ctx := context.Background()

	suite.Run("value is taken once", func() {
		suite.Require().NoError(suite.store.Put(ctx, "sess", "ad_session:abc123", "token"))

		v, ok, err := suite.store.Take(ctx, "sess", "ad_session:abc123")
		suite.NoError(err)
		suite.True(ok)
		suite.Equal("token", v)

		_, ok, err = suite.store.Take(ctx, "sess", "ad_session:abc123")
		suite.NoError(err)
		suite.False(ok)
	})

	suite.Run("put overwrites", func() {
		suite.Require().NoError(suite.store.Put(ctx, "sess", "k", "first"))
		suite.Require().NoError(suite.store.Put(ctx, "sess", "k", "second"))

		v, ok, err := suite.store.Take(ctx, "sess", "k")
		suite.NoError(err)
		suite.True(ok)
		suite.Equal("second", v)
	})

	suite.Run("concurrent take succeeds once", func() {
		suite.Require().NoError(suite.store.Put(ctx, "sess", "race", "v"))

		var (
			wg   sync.WaitGroup
			hits atomic.Int32
		)

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := suite.store.Take(ctx, "sess", "race"); ok {
					hits.Add(1)
				}
			}()
		}
		wg.Wait()

		suite.Equal(int32(1), hits.Load())
	})
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
