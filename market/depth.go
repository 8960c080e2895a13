package market

// Depth 保存最近一次盘口的五档挂单总量。
type Depth struct {
	BidVolume int64
	AskVolume int64
}

// Update 用新的盘口快照刷新挂单总量。
func (d *Depth) Update(u BookUpdate) {
	d.BidVolume = sum(u.BidVolumes[:])
	d.AskVolume = sum(u.AskVolumes[:])
}

// Imbalance 返回 (bid-ask)/(bid+ask)，两侧均为空时返回 0。
func (d Depth) Imbalance() float64 {
	total := d.BidVolume + d.AskVolume
	if total == 0 {
		return 0
	}
	return float64(d.BidVolume-d.AskVolume) / float64(total)
}

func sum(v []int64) int64 {
	var s int64
	for _, x := range v {
		s += x
	}
	return s
}
