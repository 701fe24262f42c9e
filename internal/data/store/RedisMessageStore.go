package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/data/redisStore"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

const historyDepth = 5

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if inner == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  inner,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, turn docModel.ChatTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if !s.ValidateChatId(ctx, id) {
		err := errors.New("invalid chat id")
		log.Error("Failed validation before saving", "err", err)
		return err
	}
	return s.saveTurn(ctx, id, turn)
}

func (s *RedisMessageStore) saveTurn(ctx context.Context, id string, turn docModel.ChatTurn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	data, err := json.Marshal(turn)
	if err != nil {
		log.Error("Error marshalling chat turn", "error", err)
		return err
	}
	if err := s.store.ListPush(ctx, id, data); err != nil {
		log.Error("Error saving chat", "error", err)
		return err
	}
	// Refresh the expiry on every write so active conversations stay alive.
	if err := s.store.Expire(ctx, id, config.RedisMessageStoreTTL); err != nil {
		log.Error("Error setting history expiry", "error", err)
	}
	return nil
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, id); err != nil && !s.store.IsNil(err) {
		log.Error("Error initializing chat", "error", err)
	}
	return s.saveTurn(ctx, id, docModel.ChatTurn{})
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)

	res, err := s.store.ListGetRecent(ctx, chatId, historyDepth)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}
	return res, nil
}

// TestMessageStore builds a store over an injected redis wrapper, for tests.
func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test message store"),
	}
}
