package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	storeKeyToken = "token"
	storeKeyUser  = "user"

	storeSignalCleared = "cleared"
	storeSignalSaved   = "saved"
)

// RedisStore is a durable [CredentialStore] shared between processes. Save
// writes the token and the serialized user snapshot in one pipeline; Clear
// deletes both keys in one call and publishes a change signal so every other
// process watching the same store observes the invalidation — the analog of
// the browser's cross-tab storage event.
type RedisStore struct {
	redis     *redis.Client
	prefix    string
	id        string
	opTimeout time.Duration
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ac"
	}
	return &RedisStore{
		redis:     client,
		prefix:    prefix,
		id:        uuid.NewString(),
		opTimeout: 3 * time.Second,
	}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) channel() string {
	return s.prefix + ":events"
}

func (s *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

// Token describes the token operation and its observable behavior.
//
// Token does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Token() (string, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	token, err := s.redis.Get(ctx, s.key(storeKeyToken)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Print("authclient: credential token read failed")
		}
		return "", false
	}
	return token, true
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Save(token string, user *UserProfile) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}

	ctx, cancel := s.opContext()
	defer cancel()

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(storeKeyToken), token, 0)
		pipe.Set(ctx, s.key(storeKeyUser), encoded, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Change signal is best-effort; a missed publish only delays other
	// processes until their next verification.
	if err := s.redis.Publish(ctx, s.channel(), storeSignalSaved+":"+s.id).Err(); err != nil {
		log.Print("authclient: credential change publish failed")
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Clear() error {
	ctx, cancel := s.opContext()
	defer cancel()

	removed, err := s.redis.Del(ctx, s.key(storeKeyToken), s.key(storeKeyUser)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if removed == 0 {
		// Already empty. Not publishing here is what stops two watching
		// processes from echoing clear signals at each other forever.
		return nil
	}

	if err := s.redis.Publish(ctx, s.channel(), storeSignalCleared+":"+s.id).Err(); err != nil {
		log.Print("authclient: credential change publish failed")
	}
	return nil
}

// CachedUser describes the cacheduser operation and its observable behavior.
//
// CachedUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) CachedUser() (*UserProfile, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	data, err := s.redis.Get(ctx, s.key(storeKeyUser)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Print("authclient: cached user read failed")
		}
		return nil, false
	}

	var user UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Watch describes the watch operation and its observable behavior.
//
// Watch may return an error when input validation, dependency calls, or security checks fail.
// Watch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Watch(ctx context.Context) (<-chan StoreEvent, error) {
	sub := s.redis.Subscribe(ctx, s.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%w: %v", ErrWatchUnavailable, err)
	}

	out := make(chan StoreEvent, 8)
	messages := sub.Channel()

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				signal, origin, found := strings.Cut(msg.Payload, ":")
				if !found || origin == s.id {
					// Skip our own mutations; the local manager already
					// applied the transition synchronously.
					continue
				}
				select {
				case out <- StoreEvent{Removed: signal == storeSignalCleared, At: time.Now().UTC()}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
