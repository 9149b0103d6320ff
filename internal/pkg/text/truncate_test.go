package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	// 中文按字符数截断，不会切出半个 rune
	assert.Equal(t, "开仓做多...", Truncate("开仓做多，止损见群公告", 4))
	assert.Equal(t, "anything", Truncate("anything", 0))
}
