package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentcare/rentcare-gobackend/internal/config"
	"github.com/rentcare/rentcare-gobackend/internal/db"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

const (
	storeMongo  = "mongo"
	storeMemory = "memory"
)

// stores are the backends a command runs against. close releases whatever
// connections were opened.
type stores struct {
	users      repositories.UserStore
	properties repositories.PropertyStore
	sessions   repositories.SessionStore

	mongo *mongo.Client
	redis *redis.Client
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(envFile)
}

func openStores(ctx context.Context, cfg *config.Config, kind string) (*stores, error) {
	s := &stores{}
	switch kind {
	case storeMongo:
		client, err := db.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s.mongo = client
		database := client.Database(cfg.MongoDB)

		users := repositories.NewMongoUserStore(database)
		properties := repositories.NewMongoPropertyStore(database)
		if err := users.EnsureIndexes(ctx); err != nil {
			s.close()
			return nil, err
		}
		if err := properties.EnsureIndexes(ctx); err != nil {
			s.close()
			return nil, err
		}
		s.users = users
		s.properties = properties
		log.Printf("Using MongoDB database %s", cfg.MongoDB)
	case storeMemory:
		s.users = repositories.NewInMemoryUserStore()
		s.properties = repositories.NewInMemoryPropertyStore()
		log.Println("Using in-memory store, data is lost on exit")
	default:
		return nil, fmt.Errorf("unknown store %q, want %s or %s", kind, storeMongo, storeMemory)
	}

	if cfg.SessionsInRedis() {
		rdb, err := repositories.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			s.close()
			return nil, err
		}
		s.redis = rdb
		s.sessions = repositories.NewRedisSessionStore(rdb)
		log.Printf("Sessions stored in Redis at %s", cfg.RedisAddr)
	} else {
		s.sessions = repositories.NewInMemorySessionStore()
	}
	return s, nil
}

func (s *stores) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if s.mongo != nil {
		db.Disconnect(s.mongo)
	}
}
