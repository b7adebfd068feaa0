package notifier

// TextNotifier defines a minimal text notification interface.
// Callers treat delivery as fire-and-forget: failures are logged, never
// propagated into trading decisions.
type TextNotifier interface {
	SendText(text string) error
}

// Nop 在未配置通知渠道时使用。
type Nop struct{}

func (Nop) SendText(string) error { return nil }
