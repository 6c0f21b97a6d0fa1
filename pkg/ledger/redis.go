package ledger

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// adjustScript adds ARGV[1] to the balance stored at KEYS[1] and clamps the result at zero
var adjustScript = redis.NewScript(`
local balance = tonumber(redis.call('GET', KEYS[1]) or '0') + tonumber(ARGV[1])
if balance < 0 then
	balance = 0
end
redis.call('SET', KEYS[1], balance)
return balance
`)

// Redis is a ledger that stores each balance under its own key
type Redis struct {
	rdclient *redis.Client
	prefix   string
}

// NewRedis returns a Redis ledger
func NewRedis(addr, password string, db int) *Redis {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return NewRedisWithClient(rdclient, "balance")
}

// NewRedisWithClient returns a Redis ledger using an existing client
// Keys are "{prefix}|{playerID}".
func NewRedisWithClient(rdclient *redis.Client, prefix string) *Redis {
	return &Redis{
		rdclient: rdclient,
		prefix:   prefix,
	}
}

func (r *Redis) key(playerID string) string {
	return fmt.Sprintf("%s|%s", r.prefix, playerID)
}

// GetBalance returns the player's balance
func (r *Redis) GetBalance(ctx context.Context, playerID string) (int, error) {
	balance, err := r.rdclient.Get(ctx, r.key(playerID)).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "could not get balance for %s", playerID)
	}

	return balance, nil
}

// AdjustBalance adds delta to the player's balance
func (r *Redis) AdjustBalance(ctx context.Context, playerID string, delta int) (int, error) {
	balance, err := adjustScript.Run(ctx, r.rdclient, []string{r.key(playerID)}, delta).Int()
	if err != nil {
		return 0, errors.Wrapf(err, "could not adjust balance for %s", playerID)
	}

	return balance, nil
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.rdclient.Close()
}
