package db

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Flarenzy/stateless-auth/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKeyPrefix = "auth:"

	fieldPasswordHash = "password_hash"
	fieldRoles        = "roles"
)

// RedisUserRepository keeps one hash per user under <prefix>user:<username>
// with a password_hash field and a comma separated roles field.
type RedisUserRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisUserRepository(client redis.UniversalClient, prefix string) *RedisUserRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisUserRepository{client: client, prefix: prefix}
}

func (r *RedisUserRepository) userKey(username string) string {
	return r.prefix + "user:" + username
}

func (r *RedisUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	fields, err := r.client.HGetAll(ctx, r.userKey(username)).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return domain.User{}, domain.ErrNotFound
	}

	return userFromHash(username, fields)
}

func (r *RedisUserRepository) List(ctx context.Context) ([]domain.User, error) {
	base := r.userKey("")

	var out []domain.User
	iter := r.client.Scan(ctx, 0, base+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis hgetall %s: %w", key, err)
		}
		if len(fields) == 0 {
			continue
		}

		u, err := userFromHash(strings.TrimPrefix(key, base), fields)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	slices.SortFunc(out, func(a, b domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out, nil
}

// Create refuses to overwrite an existing user. Both fields are written in one
// MULTI under WATCH, so a user is stored whole or not at all.
func (r *RedisUserRepository) Create(ctx context.Context, u domain.User) error {
	if u.Username == "" || u.PasswordHash == "" {
		return fmt.Errorf("%w: username and password hash are required", domain.ErrInvalidInput)
	}

	key := r.userKey(u.Username)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis exists: %w", err)
		}
		if exists > 0 {
			return domain.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldPasswordHash, u.PasswordHash, fieldRoles, strings.Join(u.Roles, ","))
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConflict), errors.Is(err, redis.TxFailedErr):
		// A failed transaction means the key changed under WATCH: someone else
		// created the user first.
		return domain.ErrConflict
	default:
		return fmt.Errorf("redis create user: %w", err)
	}
}

func (r *RedisUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func userFromHash(username string, fields map[string]string) (domain.User, error) {
	hash := fields[fieldPasswordHash]
	if hash == "" {
		return domain.User{}, fmt.Errorf("user %q has no %s field", username, fieldPasswordHash)
	}

	return domain.User{
		Username:     username,
		PasswordHash: hash,
		Roles:        splitRoles(fields[fieldRoles]),
	}, nil
}

func splitRoles(raw string) []string {
	var roles []string
	for r := range strings.SplitSeq(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
