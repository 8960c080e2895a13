package order

import "fmt"

// PriceBounds 描述价格步长与交易所允许的最低买价/最高卖价（均为最小货币单位）。
type PriceBounds struct {
	TickSize   int64
	MinimumBid int64
	MaximumAsk int64
}

// DefaultPriceBounds 返回交易所默认边界。
func DefaultPriceBounds() PriceBounds {
	return PriceBounds{
		TickSize:   100,
		MinimumBid: 1,
		MaximumAsk: 2147483647,
	}
}

// MinBidNearestTick 最低买价向上取整到 tick，作为激进卖出对冲价。
func (b PriceBounds) MinBidNearestTick() int64 {
	return (b.MinimumBid + b.TickSize) / b.TickSize * b.TickSize
}

// MaxAskNearestTick 最高卖价向下取整到 tick，作为激进买入对冲价。
func (b PriceBounds) MaxAskNearestTick() int64 {
	return b.MaximumAsk / b.TickSize * b.TickSize
}

// Validate 检查价格是否对齐 tick 且处于边界内。
func (b PriceBounds) Validate(price int64) error {
	if b.TickSize > 0 && price%b.TickSize != 0 {
		return fmt.Errorf("price %d not aligned to tickSize %d", price, b.TickSize)
	}
	if price < b.MinimumBid {
		return fmt.Errorf("price %d < minimumBid %d", price, b.MinimumBid)
	}
	if b.MaximumAsk > 0 && price > b.MaximumAsk {
		return fmt.Errorf("price %d > maximumAsk %d", price, b.MaximumAsk)
	}
	return nil
}
