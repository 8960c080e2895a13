package order

// IDSequence 生成会话内唯一的订单号，从 1 开始。
type IDSequence struct {
	last ID
}

// Next 返回下一个订单号。
func (s *IDSequence) Next() ID {
	s.last++
	return s.last
}

// Last 返回最近一次分配的订单号。
func (s *IDSequence) Last() ID { return s.last }
