package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotHeld блокировка истекла или принадлежит другому владельцу
var ErrNotHeld = errors.New("lock is not held by owner")

// unlockScript удаляет ключ, только если в нём значение владельца
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock короткоживущая блокировка слота через SET NX с TTL.
// Блокировка только сокращает гонки, окончательное решение за ограничением в БД.
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(ctx context.Context, addr string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

// NewRedisLockWithClient оборачивает уже настроенный клиент
func NewRedisLockWithClient(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func lockKey(key string) string {
	return "lock:" + key
}

// Lock ставит блокировку со значением owner. Снять её может только тот же owner.
func (r *RedisLock) Lock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	const op = "lock.RedisLock.Lock"

	acquired, err := r.client.SetNX(ctx, lockKey(key), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return acquired, nil
}

// Unlock снимает блокировку, если она ещё принадлежит owner. Истёкшую блокировку,
// которую уже взял кто-то другой, не трогает и возвращает ErrNotHeld.
func (r *RedisLock) Unlock(ctx context.Context, key, owner string) error {
	const op = "lock.RedisLock.Unlock"

	deleted, err := unlockScript.Run(ctx, r.client, []string{lockKey(key)}, owner).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotHeld)
	}

	return nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}
