package inventory

// Valuation 以当前 mid（最小货币单位）计算敞口的未实现盈亏。
func (e Exposure) Valuation(mid float64) float64 {
	if e.Volume == 0 {
		return 0
	}
	return (mid - float64(e.Price)) * float64(e.Volume)
}
