package cache_utils

import (
	"context"
	"crmm/internal/cache"
	"time"

	"github.com/valkey-io/valkey-go"
)

type ValkeyQueueService struct {
	client  valkey.Client
	timeout time.Duration
}

func NewValkeyQueueService() *ValkeyQueueService {
	return &ValkeyQueueService{
		client:  cache.GetCache(),
		timeout: DefaultQueueTimeout,
	}
}

func (q *ValkeyQueueService) EnqueueBatch(queueKey string, items [][]byte) error {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	cmds := make([]valkey.Completed, 0, len(items))
	for _, item := range items {
		cmds = append(cmds, q.client.B().Lpush().Key(queueKey).Element(string(item)).Build())
	}

	for _, result := range q.client.DoMulti(ctx, cmds...) {
		if result.Error() != nil {
			return result.Error()
		}
	}

	return nil
}

// DequeueBatch pops up to maxCount items in FIFO order. An empty queue yields
// an empty slice and no error.
func (q *ValkeyQueueService) DequeueBatch(queueKey string, maxCount int) ([][]byte, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	cmds := make([]valkey.Completed, 0, maxCount)
	for i := 0; i < maxCount; i++ {
		cmds = append(cmds, q.client.B().Rpop().Key(queueKey).Build())
	}

	var results [][]byte
	for _, response := range q.client.DoMulti(ctx, cmds...) {
		if response.Error() != nil {
			if valkey.IsValkeyNil(response.Error()) {
				break
			}
			return results, response.Error()
		}

		data, err := response.AsBytes()
		if err != nil {
			return results, err
		}

		results = append(results, data)
	}

	return results, nil
}

func (q *ValkeyQueueService) QueueLength(queueKey string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	result := q.client.Do(ctx, q.client.B().Llen().Key(queueKey).Build())
	if result.Error() != nil {
		return 0, result.Error()
	}

	return result.AsInt64()
}

func (q *ValkeyQueueService) ClearQueue(queueKey string) error {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	return q.client.Do(ctx, q.client.B().Del().Key(queueKey).Build()).Error()
}
