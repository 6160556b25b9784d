package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a card's questions from the backing store.
type QuestionLoader interface {
	QuestionsByCard(ctx context.Context, card models.Card) ([]*models.Question, error)
}

// QuestionCache keeps each card's question list in Redis as a JSON blob under
// questions:card:{card}, loading through singleflight on a miss.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) QuestionsByCard(ctx context.Context, card models.Card) ([]*models.Question, error) {
	key := cardKey(card)

	if qs, ok := c.fromCache(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if qs, ok := c.fromCache(ctx, key); ok {
			return qs, nil
		}

		qs, err := c.loader.QuestionsByCard(ctx, card)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(qs)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, data, c.ttlWithJitter()).Err(); err != nil {
			log.Warnf("question cache: set %s: %s", key, err)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAll(result.([]*models.Question)), nil
}

// Invalidate drops the cached list for card, e.g. after a question is added.
func (c *QuestionCache) Invalidate(ctx context.Context, card models.Card) error {
	return c.client.Del(ctx, cardKey(card)).Err()
}

func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]*models.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("question cache: get %s: %s", key, err)
		}
		return nil, false
	}

	var qs []*models.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		log.Warnf("question cache: corrupt entry %s: %s", key, err)
		return nil, false
	}
	return qs, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cardKey(card models.Card) string {
	return "questions:card:" + string(card)
}

func cloneAll(qs []*models.Question) []*models.Question {
	out := make([]*models.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
