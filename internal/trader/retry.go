package trader

import (
	"context"
	"time"

	"talon/internal/logger"
)

// RetryPolicy 是有界重试：最多尝试 Attempts 次，相邻尝试间隔 Delay。
// 不做指数退避，狙击场景里延迟可预期比收敛快慢更重要。
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration

	sleep func(time.Duration)
}

func NewRetryPolicy(attempts int, delay time.Duration) RetryPolicy {
	if attempts < 1 {
		attempts = 1
	}
	return RetryPolicy{Attempts: attempts, Delay: delay, sleep: time.Sleep}
}

// Do 执行 op 直到成功或尝试次数耗尽，返回最后一次的错误。
// ctx 取消时立即放弃。
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = op(); err == nil {
			return nil
		}
		if i < attempts {
			logger.Warnf("trader: attempt %d/%d failed: %v, retrying in %s", i, attempts, err, p.Delay)
			sleep(p.Delay)
		}
	}
	return err
}
