package listener

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent_TextMessage(t *testing.T) {
	l := New(nil)
	l.SeedChatNames(map[string]string{"oc_1001": "VIP 信号群"})

	payload := []byte(`{
		"event": {
			"message": {
				"chat_id": "oc_1001",
				"message_id": "om_abc",
				"msg_type": "text",
				"create_time": "1717300000000",
				"content": "{\"text\":\"BTC 开仓做多，止损:48000\"}"
			}
		}
	}`)
	msg, err := l.ParseEvent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "om_abc", msg.MessageID)
	assert.Equal(t, "oc_1001", msg.GroupID)
	assert.Equal(t, "VIP 信号群", msg.GroupName)
	assert.Equal(t, "BTC 开仓做多，止损:48000", msg.Text)
	assert.Equal(t, time.UnixMilli(1717300000000), msg.ReceivedAt)
}

func TestParseEvent_PostMessage(t *testing.T) {
	l := New(nil)
	payload := []byte(`{
		"event": {
			"message": {
				"chat_id": "oc_2002",
				"message_id": "om_post",
				"msg_type": "post",
				"content": "{\"post\":{\"zh_cn\":[[{\"tag\":\"text\",\"text\":\"开仓做多\"},{\"tag\":\"text\",\"text\":\" ETH\"}],[{\"tag\":\"text\",\"text\":\"止盈:4000\"}]]}}"
			}
		}
	}`)
	msg, err := l.ParseEvent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "开仓做多\n ETH\n止盈:4000", msg.Text)
	// 未预置也无 resolver 时回退为未知群
	assert.Equal(t, "未知群", msg.GroupName)
}

func TestParseEvent_Rejections(t *testing.T) {
	l := New(nil)
	ctx := context.Background()

	t.Run("非法 JSON", func(t *testing.T) {
		_, err := l.ParseEvent(ctx, []byte("not json"))
		assert.Error(t, err)
	})

	t.Run("缺 message", func(t *testing.T) {
		_, err := l.ParseEvent(ctx, []byte(`{"event":{}}`))
		assert.Error(t, err)
	})

	t.Run("缺 chat_id", func(t *testing.T) {
		_, err := l.ParseEvent(ctx, []byte(`{"event":{"message":{"message_id":"om_1","content":"{\"text\":\"hi\"}"}}}`))
		assert.Error(t, err)
	})

	t.Run("不支持的消息类型", func(t *testing.T) {
		_, err := l.ParseEvent(ctx, []byte(`{"event":{"message":{"chat_id":"oc_1","message_id":"om_1","msg_type":"image","content":"{}"}}}`))
		assert.Error(t, err)
	})

	t.Run("空文本", func(t *testing.T) {
		_, err := l.ParseEvent(ctx, []byte(`{"event":{"message":{"chat_id":"oc_1","message_id":"om_1","msg_type":"text","content":"{\"text\":\"  \"}"}}}`))
		assert.Error(t, err)
	})
}

func TestChatName_ResolverCache(t *testing.T) {
	calls := 0
	l := New(func(ctx context.Context, chatID string) (string, error) {
		calls++
		if chatID == "oc_miss" {
			return "", fmt.Errorf("not found")
		}
		return "合约策略群", nil
	})

	ctx := context.Background()
	assert.Equal(t, "合约策略群", l.ChatName(ctx, "oc_3003"))
	assert.Equal(t, "合约策略群", l.ChatName(ctx, "oc_3003"))
	assert.Equal(t, 1, calls) // 第二次命中缓存

	assert.Equal(t, "未知群", l.ChatName(ctx, "oc_miss"))
	assert.Equal(t, "未知群", l.ChatName(ctx, ""))
}
