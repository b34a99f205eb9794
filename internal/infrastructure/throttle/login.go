package throttle

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tracker:login_failures:"

// окно начинается с первой неудачи и не продлевается последующими
const recordFailureLua = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`

// LoginLimiter считает неудачные попытки входа по e_id в окне фиксированной длины
type LoginLimiter struct {
	rdb         *redis.Client
	maxFailures int
	window      time.Duration
	script      *redis.Script
}

func NewLoginLimiter(rdb *redis.Client, maxFailures int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		rdb:         rdb,
		maxFailures: maxFailures,
		window:      window,
		script:      redis.NewScript(recordFailureLua),
	}
}

func key(employeeID int) string {
	return keyPrefix + strconv.Itoa(employeeID)
}

// Allowed - false, если лимит неудачных попыток в текущем окне исчерпан
func (l *LoginLimiter) Allowed(ctx context.Context, employeeID int) (bool, error) {
	if l.maxFailures <= 0 {
		return true, nil
	}
	n, err := l.rdb.Get(ctx, key(employeeID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, errors.Wrap(err, "read login failures")
	}
	return n < l.maxFailures, nil
}

// RecordFailure увеличивает счётчик и возвращает число неудач в текущем окне
func (l *LoginLimiter) RecordFailure(ctx context.Context, employeeID int) (int, error) {
	n, err := l.script.Run(ctx, l.rdb, []string{key(employeeID)}, l.window.Milliseconds()).Int()
	if err != nil {
		return 0, errors.Wrap(err, "record login failure")
	}
	return n, nil
}

// Reset очищает счётчик после успешного входа
func (l *LoginLimiter) Reset(ctx context.Context, employeeID int) error {
	if err := l.rdb.Del(ctx, key(employeeID)).Err(); err != nil {
		return errors.Wrap(err, "reset login failures")
	}
	return nil
}
