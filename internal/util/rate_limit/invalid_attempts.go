package rate_limit

import (
	"context"
	"crmm/internal/cache"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// InvalidAttemptsCounter counts rejected requests per subject in a fixed window.
// The window starts with the first attempt and is not extended by later ones.
type InvalidAttemptsCounter struct {
	client    valkey.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

func NewInvalidAttemptsCounter(keyPrefix string, limit int, window time.Duration) *InvalidAttemptsCounter {
	return &InvalidAttemptsCounter{
		client:    cache.GetCache(),
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

func (c *InvalidAttemptsCounter) AddAttempt(subject string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := c.keyPrefix + subject

	results := c.client.DoMulti(
		ctx,
		c.client.B().Incr().Key(key).Build(),
		c.client.B().Expire().Key(key).Seconds(int64(c.window.Seconds())).Nx().Build(),
	)

	for _, result := range results {
		if result.Error() != nil {
			return 0, fmt.Errorf("failed to add invalid attempt: %w", result.Error())
		}
	}

	return results[0].AsInt64()
}

func (c *InvalidAttemptsCounter) IsBlocked(subject string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := c.client.Do(ctx, c.client.B().Get().Key(c.keyPrefix+subject).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read invalid attempts: %w", result.Error())
	}

	attempts, err := result.AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to parse invalid attempts: %w", err)
	}

	return attempts >= int64(c.limit), nil
}

func (c *InvalidAttemptsCounter) Reset(subject string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return c.client.Do(ctx, c.client.B().Del().Key(c.keyPrefix+subject).Build()).Error()
}
