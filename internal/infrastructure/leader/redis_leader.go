package leader

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

var _ domain.LeaderElection = (*RedisLeaderElection)(nil)

const releaseScript = `
        if redis.call("GET", KEYS[1]) == ARGV[1] then
            return redis.call("DEL", KEYS[1])
        else
            return 0
        end
    `

const extendScript = `
            if redis.call("GET", KEYS[1]) == ARGV[1] then
                return redis.call("PEXPIRE", KEYS[1], ARGV[2])
            else
                return 0
            end
        `

// DesktopKey is the leadership key shared by every agent running for the
// same user.
func DesktopKey(userID string) string {
	return "auction_sync:desktop_leader:" + userID
}

// RedisLeaderElection holds one leadership key with SETNX and keeps it alive
// at a third of its TTL until released or lost.
type RedisLeaderElection struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    logger.Logger

	mu   sync.Mutex
	stop chan struct{}
}

func NewRedisLeaderElection(client *redis.Client, key string, ttl time.Duration, log logger.Logger) *RedisLeaderElection {
	return &RedisLeaderElection{
		client: client,
		key:    key,
		ttl:    ttl,
		log:    log,
	}
}

func (r *RedisLeaderElection) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	result, err := r.client.SetNX(ctx, r.key, instanceID, r.ttl).Result()
	if err != nil {
		return false, err
	}

	if result {
		r.mu.Lock()
		if r.stop != nil {
			close(r.stop)
		}
		stop := make(chan struct{})
		r.stop = stop
		r.mu.Unlock()

		r.log.Info("Acquired leadership", "key", r.key, "instance_id", instanceID)
		go r.maintainLeadership(instanceID, stop)
	}

	return result, nil
}

func (r *RedisLeaderElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	currentLeader, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	return currentLeader == instanceID, nil
}

func (r *RedisLeaderElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	r.mu.Lock()
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.mu.Unlock()

	_, err := r.client.Eval(ctx, releaseScript, []string{r.key}, instanceID).Result()
	return err
}

func (r *RedisLeaderElection) maintainLeadership(instanceID string, stop <-chan struct{}) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		result, err := r.client.Eval(ctx, extendScript, []string{r.key},
			instanceID, r.ttl.Milliseconds()).Int64()
		cancel()

		if err != nil || result == 0 {
			r.log.Warn("Lost leadership", "key", r.key, "instance_id", instanceID, "error", err)
			return
		}
	}
}
