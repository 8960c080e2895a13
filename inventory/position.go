package inventory

// Exposure 由成交累积出的加权平均敞口（价格为最小货币单位，数量带符号）。
type Exposure struct {
	Price  int64
	Volume int64
}

// Apply 将一笔带符号成交并入敞口：同向加权平均，反向部分对冲保留原价，
// 完全对冲清零，反手则以新成交价为基准。
func (e *Exposure) Apply(price, delta int64) {
	if delta == 0 {
		return
	}
	combined := e.Volume + delta
	if e.Volume == 0 || (delta > 0) == (e.Volume > 0) {
		e.Price = (abs(delta)*price + abs(e.Volume)*e.Price) / abs(combined)
		e.Volume = combined
		return
	}
	switch {
	case abs(delta) < abs(e.Volume):
		e.Volume = combined
	case abs(delta) == abs(e.Volume):
		e.Price = 0
		e.Volume = 0
	default:
		e.Volume = combined
		e.Price = price
	}
}

// Tracker 维护主合约净仓位与成交敞口，仅由成交驱动。
type Tracker struct {
	net      int64
	exposure Exposure
}

// ApplyFill 按方向记账，买为正卖为负，返回带符号的成交量。
func (t *Tracker) ApplyFill(buy bool, price, volume int64) int64 {
	delta := volume
	if !buy {
		delta = -volume
	}
	t.net += delta
	t.exposure.Apply(price, delta)
	return delta
}

// Position 返回净仓位。
func (t *Tracker) Position() int64 { return t.net }

// Exposure 返回当前敞口记录。
func (t *Tracker) Exposure() Exposure { return t.exposure }

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
