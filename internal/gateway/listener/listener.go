// Package listener 解析 IM 平台（飞书风格）的消息事件回调，
// 还原出群聊文本消息供后续流水线消费。
package listener

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ordersift/internal/logger"
	"ordersift/internal/types"

	"github.com/tidwall/gjson"
)

const unknownChatName = "未知群"

// ChatNameResolver 按 chat_id 查询群名称（通常走平台 API）。
type ChatNameResolver func(ctx context.Context, chatID string) (string, error)

// Listener 把事件回调还原为 RawMessage，群名称带进程内缓存。
type Listener struct {
	mu        sync.RWMutex
	chatNames map[string]string
	resolver  ChatNameResolver
}

// New 创建 Listener。resolver 可为 nil，此时群名称回退为配置里的 chat_id 映射或“未知群”。
func New(resolver ChatNameResolver) *Listener {
	return &Listener{
		chatNames: make(map[string]string),
		resolver:  resolver,
	}
}

// SeedChatNames 预置 chat_id → 群名称映射（来自配置），避免冷启动时打平台 API。
func (l *Listener) SeedChatNames(names map[string]string) {
	if l == nil || len(names) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, name := range names {
		if id != "" && name != "" {
			l.chatNames[id] = name
		}
	}
}

// ChatName 返回群名称，缓存未命中时调用 resolver 并写回缓存。
func (l *Listener) ChatName(ctx context.Context, chatID string) string {
	if chatID == "" {
		return unknownChatName
	}
	l.mu.RLock()
	name, ok := l.chatNames[chatID]
	l.mu.RUnlock()
	if ok {
		return name
	}
	if l.resolver == nil {
		return unknownChatName
	}
	name, err := l.resolver(ctx, chatID)
	if err != nil || strings.TrimSpace(name) == "" {
		logger.Warnf("获取群名称失败 chat_id=%s err=%v", chatID, err)
		return unknownChatName
	}
	l.mu.Lock()
	l.chatNames[chatID] = name
	l.mu.Unlock()
	return name
}

// ParseEvent 解析一条消息事件回调，返回还原后的 RawMessage。
// 支持 text 与 post 两种消息类型；其他类型返回错误由调用方忽略。
func (l *Listener) ParseEvent(ctx context.Context, payload []byte) (types.RawMessage, error) {
	if !gjson.ValidBytes(payload) {
		return types.RawMessage{}, fmt.Errorf("事件回调不是合法 JSON")
	}
	msg := gjson.GetBytes(payload, "event.message")
	if !msg.Exists() {
		return types.RawMessage{}, fmt.Errorf("事件缺少 event.message")
	}
	chatID := msg.Get("chat_id").String()
	messageID := msg.Get("message_id").String()
	if chatID == "" || messageID == "" {
		return types.RawMessage{}, fmt.Errorf("事件缺少 chat_id 或 message_id")
	}

	msgType := msg.Get("msg_type").String()
	if msgType == "" {
		msgType = "text"
	}
	text, err := extractContent(msgType, msg.Get("content").String())
	if err != nil {
		return types.RawMessage{}, err
	}
	if strings.TrimSpace(text) == "" {
		return types.RawMessage{}, fmt.Errorf("消息内容为空 message_id=%s", messageID)
	}

	receivedAt := time.Now()
	if ct := msg.Get("create_time").String(); ct != "" {
		if ms, err := strconv.ParseInt(ct, 10, 64); err == nil && ms > 0 {
			receivedAt = time.UnixMilli(ms)
		}
	}

	return types.RawMessage{
		MessageID:  messageID,
		GroupID:    chatID,
		GroupName:  l.ChatName(ctx, chatID),
		Text:       text,
		ReceivedAt: receivedAt,
	}, nil
}

// extractContent 从 content JSON 字符串里取出纯文本。
// text 消息取 text 字段；post 富文本按段落拼接 zh_cn 里的 text 元素。
func extractContent(msgType, content string) (string, error) {
	if !gjson.Valid(content) {
		return "", fmt.Errorf("消息 content 不是合法 JSON")
	}
	parsed := gjson.Parse(content)
	switch msgType {
	case "text":
		return parsed.Get("text").String(), nil
	case "post":
		var paragraphs []string
		parsed.Get("post.zh_cn").ForEach(func(_, row gjson.Result) bool {
			if !row.IsArray() {
				return true
			}
			row.ForEach(func(_, elem gjson.Result) bool {
				if t := elem.Get("text"); t.Exists() {
					paragraphs = append(paragraphs, t.String())
				}
				return true
			})
			return true
		})
		return strings.Join(paragraphs, "\n"), nil
	default:
		return "", fmt.Errorf("不支持的消息类型: %s", msgType)
	}
}
