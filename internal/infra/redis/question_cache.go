package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizline-service/internal/app"
	"quizline-service/internal/domain"
)

// QuestionCache is a read-through cache over an app.QuestionRepository.
// Quiz content is immutable after assembly, so cached entries only ever
// expire, never invalidate. Question lists and answer sets are stored as
// JSON values:
//
//	SET quiz:{quizID}:questions       {json}
//	SET question:{questionID}:answers {json}
type QuestionCache struct {
	client *redis.Client
	source app.QuestionRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

var _ app.QuestionRepository = (*QuestionCache)(nil)

func NewQuestionCache(client *redis.Client, source app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func questionsKey(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func answersKey(questionID string) string {
	return "question:" + questionID + ":answers"
}

func (c *QuestionCache) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	key := questionsKey(quizID)
	var questions []domain.Question
	if c.readCached(ctx, key, &questions) {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached []domain.Question
		if c.readCached(ctx, key, &cached) {
			return cached, nil
		}
		loaded, err := c.source.GetQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}
		c.writeCached(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) GetAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	key := answersKey(questionID)
	var answers []domain.Answer
	if c.readCached(ctx, key, &answers) {
		return answers, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var cached []domain.Answer
		if c.readCached(ctx, key, &cached) {
			return cached, nil
		}
		loaded, err := c.source.GetAnswers(ctx, questionID)
		if err != nil {
			return nil, err
		}
		c.writeCached(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Answer), nil
}

func (c *QuestionCache) readCached(ctx context.Context, key string, out interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (c *QuestionCache) writeCached(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	// best-effort; a failed write just means the next read misses
	_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
