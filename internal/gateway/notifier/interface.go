package notifier

// TextNotifier defines a minimal text notification interface.
// It is intentionally small so different components can depend on it without
// importing concrete implementations (e.g. Telegram).
type TextNotifier interface {
	SendText(text string) error
}

// PhotoNotifier 发送图片通知（报表快照），caption 可为空。
type PhotoNotifier interface {
	SendPhoto(caption string, png []byte) error
}
