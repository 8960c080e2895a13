package gateway

import (
	"encoding/json"
	"fmt"

	"hedged-mm/market"
	"hedged-mm/order"
)

// EventType 入站事件类型。
type EventType string

const (
	EventBook      EventType = "book"
	EventFill      EventType = "fill"
	EventStatus    EventType = "status"
	EventHedgeFill EventType = "hedge_fill"
	EventError     EventType = "error"
)

// IntentType 出站意图类型。
type IntentType string

const (
	IntentInsert IntentType = "insert"
	IntentCancel IntentType = "cancel"
	IntentHedge  IntentType = "hedge"
)

// Envelope 线上消息包装，data 的结构由 type 决定。
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type bookPayload struct {
	Instrument market.Instrument    `json:"instrument"`
	Sequence   int64                `json:"seq"`
	BidPrices  [market.Levels]int64 `json:"bidPrices"`
	BidVolumes [market.Levels]int64 `json:"bidVolumes"`
	AskPrices  [market.Levels]int64 `json:"askPrices"`
	AskVolumes [market.Levels]int64 `json:"askVolumes"`
}

type orderPayload struct {
	OrderID   order.ID `json:"orderId"`
	Price     int64    `json:"price,omitempty"`
	AvgPrice  int64    `json:"avgPrice,omitempty"`
	Volume    int64    `json:"volume,omitempty"`
	Filled    int64    `json:"filled,omitempty"`
	Remaining int64    `json:"remaining,omitempty"`
	Fees      int64    `json:"fees,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// Event 解码后的入站事件。
type Event struct {
	Type      EventType
	Book      market.BookUpdate
	OrderID   order.ID
	Price     int64 // fill 为成交价，hedge_fill 为均价
	Volume    int64
	Filled    int64
	Remaining int64
	Fees      int64
	Message   string
}

// DecodeEvent 解析一条入站消息。
func DecodeEvent(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, fmt.Errorf("decode envelope: %w", err)
	}
	ev := Event{Type: EventType(env.Type)}
	if len(env.Data) == 0 {
		return ev, fmt.Errorf("event %q has no data", env.Type)
	}

	if ev.Type == EventBook {
		var p bookPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return ev, fmt.Errorf("decode book: %w", err)
		}
		ev.Book = market.BookUpdate{
			Instrument: p.Instrument,
			Sequence:   p.Sequence,
			BidPrices:  p.BidPrices,
			BidVolumes: p.BidVolumes,
			AskPrices:  p.AskPrices,
			AskVolumes: p.AskVolumes,
		}
		return ev, nil
	}

	var p orderPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return ev, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	ev.OrderID = p.OrderID
	ev.Volume = p.Volume
	switch ev.Type {
	case EventFill:
		ev.Price = p.Price
	case EventHedgeFill:
		ev.Price = p.AvgPrice
	case EventStatus:
		ev.Filled, ev.Remaining, ev.Fees = p.Filled, p.Remaining, p.Fees
	case EventError:
		ev.Message = p.Message
	default:
		return ev, fmt.Errorf("unknown event type %q", env.Type)
	}
	return ev, nil
}

// Handler 接收解码后的事件，由引擎实现。
type Handler interface {
	OnMarketData(u market.BookUpdate)
	OnFill(id order.ID, price, volume int64)
	OnOrderStatus(id order.ID, filled, remaining, fees int64)
	OnHedgeFill(id order.ID, avgPrice, volume int64)
	OnError(id order.ID, message string)
}

// Dispatch 将事件交给对应的处理方法。
func Dispatch(h Handler, ev Event) {
	switch ev.Type {
	case EventBook:
		h.OnMarketData(ev.Book)
	case EventFill:
		h.OnFill(ev.OrderID, ev.Price, ev.Volume)
	case EventStatus:
		h.OnOrderStatus(ev.OrderID, ev.Filled, ev.Remaining, ev.Fees)
	case EventHedgeFill:
		h.OnHedgeFill(ev.OrderID, ev.Price, ev.Volume)
	case EventError:
		h.OnError(ev.OrderID, ev.Message)
	}
}

// Intent 出站订单意图。
type Intent struct {
	Type     IntentType     `json:"-"`
	OrderID  order.ID       `json:"orderId"`
	Side     order.Side     `json:"side"`
	Price    int64          `json:"price"`
	Volume   int64          `json:"volume"`
	Lifespan order.Lifespan `json:"lifespan"`
}

type cancelPayload struct {
	OrderID order.ID `json:"orderId"`
}

type hedgePayload struct {
	OrderID order.ID   `json:"orderId"`
	Side    order.Side `json:"side"`
	Price   int64      `json:"price"`
	Volume  int64      `json:"volume"`
}

// EncodeIntent 序列化一条出站意图。
func EncodeIntent(in Intent) ([]byte, error) {
	var payload any
	switch in.Type {
	case IntentInsert:
		payload = in
	case IntentCancel:
		payload = cancelPayload{OrderID: in.OrderID}
	case IntentHedge:
		payload = hedgePayload{OrderID: in.OrderID, Side: in.Side, Price: in.Price, Volume: in.Volume}
	default:
		return nil, fmt.Errorf("unknown intent type %q", in.Type)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: string(in.Type), Data: data})
}
