package cache

import (
	"context"
	"crypto/tls"
	"crmm/internal/config"
	"net"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

var (
	once         sync.Once
	valkeyClient valkey.Client
)

func GetCache() valkey.Client {
	once.Do(func() {
		env := config.GetEnv()

		options := valkey.ClientOption{
			InitAddress:       []string{net.JoinHostPort(env.ValkeyHost, env.ValkeyPort)},
			Password:          env.ValkeyPassword,
			Username:          env.ValkeyUsername,
			ConnWriteTimeout:  5 * time.Second,
			DisableCache:      true,
			BlockingPoolSize:  16,
			PipelineMultiplex: 2,
		}

		if env.ValkeyIsSsl {
			options.TLSConfig = &tls.Config{
				ServerName: env.ValkeyHost,
			}
		}

		client, err := valkey.NewClient(options)
		if err != nil {
			panic(err)
		}

		valkeyClient = client
	})

	return valkeyClient
}

func Ping(ctx context.Context) error {
	client := GetCache()
	return client.Do(ctx, client.B().Ping().Build()).Error()
}
