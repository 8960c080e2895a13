package order

// ID 是会话内单调递增的订单号，主合约与对冲合约共用同一序列。0 表示无订单。
type ID int64

// Side 买卖方向，取值与交易所协议一致。
type Side int

const (
	Sell Side = iota
	Buy
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Lifespan 挂单存续方式。
type Lifespan int

const (
	FillAndKill Lifespan = iota
	GoodForDay
)

func (l Lifespan) String() string {
	if l == GoodForDay {
		return "GOOD_FOR_DAY"
	}
	return "FILL_AND_KILL"
}

// Kind 区分报价单与对冲单，订单号即可唯一确定其类别。
type Kind int

const (
	KindBid Kind = iota
	KindAsk
	KindHedgeBid
	KindHedgeAsk
)

func (k Kind) String() string {
	switch k {
	case KindBid:
		return "BID"
	case KindAsk:
		return "ASK"
	case KindHedgeBid:
		return "HEDGE_BID"
	case KindHedgeAsk:
		return "HEDGE_ASK"
	default:
		return "UNKNOWN"
	}
}

// Side 返回该类别对应的买卖方向。
func (k Kind) Side() Side {
	if k == KindBid || k == KindHedgeBid {
		return Buy
	}
	return Sell
}

// IsHedge 是否为对冲合约订单。
func (k Kind) IsHedge() bool { return k == KindHedgeBid || k == KindHedgeAsk }

// Status 订单生命周期状态。
type Status string

const (
	StatusPendingLive Status = "PENDING_LIVE" // 已发出，未收到回报
	StatusLive        Status = "LIVE"
	StatusCancelling  Status = "CANCELLING" // 撤单已发出，等待 remaining=0
	StatusFilled      Status = "FILLED"
	StatusCanceled    Status = "CANCELED"
	StatusRejected    Status = "REJECTED" // 交易所报错或网关发送失败
)

// Order 记录单个未终结订单。
type Order struct {
	ID       ID
	Kind     Kind
	Price    int64
	Volume   int64
	Filled   int64
	Lifespan Lifespan
	Status   Status
}

// Remaining 返回尚未成交的数量。
func (o Order) Remaining() int64 {
	if o.Filled >= o.Volume {
		return 0
	}
	return o.Volume - o.Filled
}
