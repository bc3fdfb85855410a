package bot

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"go.uber.org/zap"
)

// loginBackOff 登录重试间隔：第n次重试等待 min(2^n*base, max)
type loginBackOff struct {
	base  time.Duration
	max   time.Duration
	retry int
}

func newLoginBackOff(base, max time.Duration) *loginBackOff {
	if base <= 0 {
		base = 5 * time.Second
	}
	if max < base {
		max = 300 * time.Second
	}
	return &loginBackOff{base: base, max: max}
}

// NextBackOff 实现 backoff.BackOff
func (b *loginBackOff) NextBackOff() time.Duration {
	b.retry++
	wait := b.base << uint(b.retry)
	if wait <= 0 || wait > b.max {
		return b.max
	}
	return wait
}

// Reset 实现 backoff.BackOff
func (b *loginBackOff) Reset() {
	b.retry = 0
}

// isRateLimited 登录被限流时才重试
func isRateLimited(err error) bool {
	var rateErr *discordgo.RateLimitError
	if stderrors.As(err, &rateErr) {
		return true
	}
	var restErr *discordgo.RESTError
	if stderrors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// loginPolicy 登录重试设置
type loginPolicy struct {
	retries int
	base    time.Duration
	max     time.Duration
}

// withLoginRetry 执行 open，仅在限流时按退避策略重试，最多 retries 次
func withLoginRetry(ctx context.Context, policy loginPolicy, log *zap.Logger, open func() error) error {
	var b backoff.BackOff = newLoginBackOff(policy.base, policy.max)
	b = backoff.WithMaxRetries(b, uint64(policy.retries))
	b = backoff.WithContext(b, ctx)

	operation := func() error {
		err := open()
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("Discord login rate limited, retrying", zap.Error(err), zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		if isRateLimited(err) {
			return errors.Wrap(err, errors.ErrDiscordRateLimited)
		}
		return errors.Wrap(err, errors.ErrDiscordLogin)
	}
	return nil
}
