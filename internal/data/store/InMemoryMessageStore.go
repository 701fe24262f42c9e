package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem MessageStore")

// InMemoryMessageStore is the fallback conversation store used when redis is
// offline. History does not survive a restart.
type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]docModel.ChatTurn
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]docModel.ChatTurn),
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryMessageStore) TrySaveChat(ctx context.Context, id string, turn docModel.ChatTurn) error {
	if !store.ValidateChatId(ctx, id) {
		return nil
	}
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = append(store.chatMap[id], turn)
	return nil
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]docModel.ChatTurn, 0)
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]string, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	turns := store.chatMap[chatId]
	history := make([]string, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			inMemLogger.Error("Error marshalling chat turn", "error", err)
			continue
		}
		history = append(history, string(data))
	}
	return history, nil
}
