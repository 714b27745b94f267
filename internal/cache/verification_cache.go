package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mathqc/internal/model"
)

// VerificationCache stores verification results keyed by question content,
// so an unchanged question skips re-verification. Entries are keyed by a
// content hash, not the question id; editing a question invalidates its
// entry naturally.
type VerificationCache interface {
	Set(ctx context.Context, q *model.Question, result *model.VerificationResult) error
	Get(ctx context.Context, q *model.Question) (*model.VerificationResult, error)
	Delete(ctx context.Context, q *model.Question) error
}

type verificationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVerificationCache(client *redis.Client, ttl time.Duration) VerificationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &verificationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *verificationCache) Set(ctx context.Context, q *model.Question, result *model.VerificationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "verification:"+ContentHash(q), data, c.ttl).Err()
}

func (c *verificationCache) Get(ctx context.Context, q *model.Question) (*model.VerificationResult, error) {
	data, err := c.client.Get(ctx, "verification:"+ContentHash(q)).Result()
	if err != nil {
		return nil, err
	}
	var result model.VerificationResult
	err = json.Unmarshal([]byte(data), &result)
	return &result, err
}

func (c *verificationCache) Delete(ctx context.Context, q *model.Question) error {
	return c.client.Del(ctx, "verification:"+ContentHash(q)).Err()
}

// ContentHash digests the fields verification reads. Callers only store
// full (non-degraded) results here; a degraded verdict is recomputed on the
// next request.
func ContentHash(q *model.Question) string {
	h := sha256.New()
	h.Write([]byte(strings.Join([]string{
		strconv.Itoa(q.Grade),
		q.Domain,
		q.Standard,
		q.QuestionText,
		q.CorrectAnswer,
		q.Explanation,
		strings.Join(q.Choices, "\x1f"),
		string(q.AnswerKey),
	}, "\x1e")))
	return hex.EncodeToString(h.Sum(nil))
}
