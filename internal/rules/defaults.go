package rules

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRuleSet 返回随安装落地的初始规则表。
// 关键词表来自线上运行多时的群消息样本，规则顺序即匹配优先级。
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Filter: FilterRules{
			ExcludeKeywords: []string{
				"广告", "营销", "推广", "免费", "扫码", "加群",
				"关注", "点赞", "转发", "分享", "福利", "优惠券",
				"折扣", "限时优惠", "领取", "报名", "注册", "开户",
				"开户链接", "入金", "出金", "邀请码", "邀请链接",
				"返佣", "佣金", "代理", "合作", "客服", "咨询",
				"联系", "电话", "微信", "QQ", "电报", "Telegram", "Discord",
			},
			TradingKeywords: []string{
				"开仓", "平仓", "做多", "做空", "买入", "卖出",
				"long", "short", "buy", "sell", "入场", "离场",
				"止盈", "止损", "补仓", "加仓", "下单", "成交",
				"价格", "数量",
			},
			ExcludePatterns: []string{
				"趋势分析", "市场分析", "技术分析", "基本面分析",
				"行情分析", "投资建议", "风险提示", "免责声明",
				"仅供参考", "不构成投资建议", "市场有风险", "投资需谨慎",
			},
		},
		Fields: map[string][]FieldRule{
			FieldOrderType: {
				{Pattern: `开仓|入场|建仓`, Tag: "OPEN"},
				{Pattern: `平仓|离场|撤仓|close|exit`, Tag: "CLOSE"},
				{Pattern: `买入|buy`, Tag: "BUY"},
				{Pattern: `卖出|sell`, Tag: "SELL"},
			},
			FieldDirection: {
				{Pattern: `做多|看多|买入|long|buy`, Tag: "LONG"},
				{Pattern: `做空|看空|卖出|short|sell`, Tag: "SHORT"},
			},
			FieldEntryAmount: {
				{Pattern: `入场[金额]*[:：\s]*[0-9,.]+\s*(?:USDT|USD|U)?`},
				{Pattern: `投入[金额]*[:：\s]*[0-9,.]+\s*(?:USDT|USD|U)?`},
				{Pattern: `仓位[:：\s]*[0-9,.]+\s*(?:USDT|USD|U)?`},
				{Pattern: `金额[:：\s]*[0-9,.]+\s*(?:USDT|USD|U)?`},
			},
			FieldTakeProfit: {
				{Pattern: `止盈[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
				{Pattern: `目标[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
				{Pattern: `盈利[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
				{Pattern: `tp[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
			},
			FieldStopLoss: {
				{Pattern: `止损[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
				{Pattern: `风控[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
				{Pattern: `sl[:：\s]*[0-9,.]+\s*(?:%|USDT|USD|U)?`},
			},
			FieldStrategy: {
				{Pattern: `策略[:：\s]*(.+?)(?:\n|$)`},
				{Pattern: `strategy[:：\s]*(.+?)(?:\n|$)`},
				{Pattern: `交易计划[:：\s]*(.+?)(?:\n|$)`},
				{Pattern: `关键词[:：\s]*([^\n]+)`},
			},
		},
	}
}

// WriteDefaultRules 将默认规则表写到 path，目录不存在时会创建。
func WriteDefaultRules(path string) error {
	return writeRulesFile(path, DefaultRuleSet())
}

func writeRulesFile(path string, rs RuleSet) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := yaml.Marshal(rs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
