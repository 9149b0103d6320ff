// Package binance 把解析出的订单信号跟单到币安合约账户（可选能力，默认 DryRun）。
package binance

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ordersift/internal/logger"
	"ordersift/internal/types"

	"github.com/adshao/go-binance/v2/futures"
)

// Executor 基于 go-binance SDK 将订单记录映射为市价单。
// 消息里的金额字段保留原文形态，无法直接换算数量，下单数量来自配置。
type Executor struct {
	cfg    Config
	client *futures.Client
}

func NewExecutor(cfg Config) (*Executor, error) {
	final := cfg.withDefaults()
	if final.Symbol == "" {
		return nil, fmt.Errorf("binance executor: symbol 不能为空")
	}
	if final.Quantity == "" {
		return nil, fmt.Errorf("binance executor: quantity 不能为空")
	}
	if !final.DryRun && (final.APIKey == "" || final.APISecret == "") {
		return nil, fmt.Errorf("binance executor: 实盘模式需要 API 凭证")
	}
	client := futures.NewClient(final.APIKey, final.APISecret)
	client.BaseURL = final.RESTBaseURL
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Executor{cfg: final, client: client}, nil
}

// Execute 按订单记录下一笔市价单。方向缺失的记录直接跳过。
func (e *Executor) Execute(ctx context.Context, rec types.OrderRecord) error {
	if e == nil {
		return nil
	}
	side, positionSide, ok := mapSides(rec)
	if !ok {
		logger.Infof("跟单跳过：记录缺少方向 group=%s", rec.GroupName)
		return nil
	}
	if e.cfg.DryRun {
		logger.Infof("跟单 DryRun symbol=%s side=%s position_side=%s qty=%s",
			e.cfg.Symbol, side, positionSide, e.cfg.Quantity)
		return nil
	}
	order, err := e.client.NewCreateOrderService().
		Symbol(e.cfg.Symbol).
		Side(side).
		PositionSide(positionSide).
		Type(futures.OrderTypeMarket).
		Quantity(e.cfg.Quantity).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("binance 下单失败: %w", err)
	}
	logger.Infof("跟单成功 symbol=%s side=%s order_id=%d", e.cfg.Symbol, side, order.OrderID)
	return nil
}

// mapSides 把订单类型/方向映射为币安侧别。
// 平仓消息反向市价单（双向持仓模式下按 position side 减仓）。
func mapSides(rec types.OrderRecord) (futures.SideType, futures.PositionSideType, bool) {
	dir := types.Direction(strings.ToUpper(string(rec.Direction)))
	closing := rec.OrderType == types.OrderTypeClose || rec.OrderType == types.OrderTypeSell
	switch dir {
	case types.DirectionLong:
		if closing {
			return futures.SideTypeSell, futures.PositionSideTypeLong, true
		}
		return futures.SideTypeBuy, futures.PositionSideTypeLong, true
	case types.DirectionShort:
		if closing {
			return futures.SideTypeBuy, futures.PositionSideTypeShort, true
		}
		return futures.SideTypeSell, futures.PositionSideTypeShort, true
	default:
		return "", "", false
	}
}
