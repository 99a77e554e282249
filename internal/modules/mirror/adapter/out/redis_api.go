package out

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"studyhub/internal/modules/mirror/domain"
	mirrorout "studyhub/internal/modules/mirror/port/out"
	apperrors "studyhub/internal/platform/errors"
)

// RedisDocumentAPI keeps each user's collection in one hash,
// users:{uid}:{collection}, keyed by record id.
type RedisDocumentAPI struct {
	client *redis.Client
}

func NewRedisDocumentAPI(redisURL string) (*RedisDocumentAPI, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %v", apperrors.ErrInvalidInput, err)
	}
	return &RedisDocumentAPI{client: redis.NewClient(opt)}, nil
}

var _ mirrorout.DocumentAPI = (*RedisDocumentAPI)(nil)

func HashKey(userID, collection string) string {
	return "users:" + userID + ":" + collection
}

func (r *RedisDocumentAPI) Ping(ctx context.Context) error {
	return classify(r.client.Ping(ctx).Err())
}

func (r *RedisDocumentAPI) Upsert(ctx context.Context, who domain.Identity, collection, id string, body json.RawMessage) error {
	return classify(r.client.HSet(ctx, HashKey(who.UserID, collection), id, string(body)).Err())
}

func (r *RedisDocumentAPI) Remove(ctx context.Context, who domain.Identity, collection, id string) error {
	return classify(r.client.HDel(ctx, HashKey(who.UserID, collection), id).Err())
}

func (r *RedisDocumentAPI) List(ctx context.Context, who domain.Identity, collection string) ([]json.RawMessage, error) {
	values, err := r.client.HGetAll(ctx, HashKey(who.UserID, collection)).Result()
	if err != nil {
		return nil, classify(err)
	}
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, json.RawMessage(values[id]))
	}
	return out, nil
}

func (r *RedisDocumentAPI) Close() error {
	return r.client.Close()
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "WRONGPASS") || strings.HasPrefix(msg, "NOPERM") {
		return fmt.Errorf("%w: %v", apperrors.ErrAuthorizationRejected, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrRemoteUnavailable, err)
}
