package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Online keys refresh while the connection lives; the TTL bounds
	// staleness if the process dies without cleanup.
	presenceOnlineTTL = 5 * time.Minute

	// A short offline TTL avoids status flicker on quick reconnects.
	presenceOfflineTTL = 1 * time.Minute
)

// PresenceService mirrors hub registrations into Redis so REST
// handlers (and other processes) can answer presence queries without
// reaching into the hub. Satisfies websocket.PresenceStore.
type PresenceService struct {
	client *redis.Client
}

func NewPresenceService(client *redis.Client) *PresenceService {
	return &PresenceService{client: client}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (s *PresenceService) SetOnline(ctx context.Context, userID uint) error {
	return s.client.Set(ctx, presenceKey(userID), "online", presenceOnlineTTL).Err()
}

func (s *PresenceService) SetOffline(ctx context.Context, userID uint) error {
	return s.client.Set(ctx, presenceKey(userID), "offline", presenceOfflineTTL).Err()
}

func (s *PresenceService) IsOnline(ctx context.Context, userID uint) (bool, error) {
	status, err := s.client.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == "online", nil
}

// OnlineAmong filters the given ids down to the currently online
// ones, preserving order.
func (s *PresenceService) OnlineAmong(ctx context.Context, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presenceKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	online := make([]uint, 0, len(userIDs))
	for i, v := range values {
		if v == "online" {
			online = append(online, userIDs[i])
		}
	}
	return online, nil
}
