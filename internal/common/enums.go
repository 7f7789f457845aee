package common

// Side is the side of the book an order or trade acts on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// InstrumentType categorizes a tradable instrument.
type InstrumentType int

const (
	Currency InstrumentType = iota
	Equity
)

func (t InstrumentType) String() string {
	if t == Currency {
		return "CURRENCY"
	}
	return "EQUITY"
}

// RecordKind discriminates the concrete record behind a MarketRecord.
type RecordKind int

const (
	OrderRecord RecordKind = iota
	TradeRecord
)

func (k RecordKind) String() string {
	if k == OrderRecord {
		return "ORDER"
	}
	return "TRADE"
}

type OrderType int

const (
	// Limit orders are an order to buy or sell at a specified price or
	// better. Limit orders may rest on the order book until filled.
	LimitOrder OrderType = iota
	// Market orders are instructions to buy or sell immediately at
	// whatever prices the book currently offers. A market order never
	// rests; any unfilled remainder is discarded.
	MarketOrder
	// Stop orders are held inactive until a trade prints through their
	// trigger price, at which point their target order is submitted.
	StopOrder
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "LIMIT"
	case MarketOrder:
		return "MARKET"
	default:
		return "STOP"
	}
}

// OrderFlag modifies how an order's remainder and fill requirements are
// handled at submission time.
type OrderFlag int

const (
	FlagNone OrderFlag = iota
	FillOrKill
	AllOrNone
	ImmediateOrCancel
)

func (f OrderFlag) String() string {
	switch f {
	case FillOrKill:
		return "FILL_OR_KILL"
	case AllOrNone:
		return "ALL_OR_NONE"
	case ImmediateOrCancel:
		return "IMMEDIATE_OR_CANCEL"
	default:
		return "NONE"
	}
}

// EventType tags a notification pushed to the registered sink. The book
// itself emits TRADE, OPEN, CANCEL, CHANGE and FILL; the remaining values
// exist for host-layer lifecycle signalling.
type EventType int

const (
	EventTrade EventType = iota
	EventOpen
	EventCancel
	EventChange
	EventFill
	EventData
	EventHalt
	EventContinue
	EventError
	EventStart
	EventExit
)

var eventTypeNames = map[EventType]string{
	EventTrade:    "TRADE",
	EventOpen:     "OPEN",
	EventCancel:   "CANCEL",
	EventChange:   "CHANGE",
	EventFill:     "FILL",
	EventData:     "DATA",
	EventHalt:     "HALT",
	EventContinue: "CONTINUE",
	EventError:    "ERROR",
	EventStart:    "START",
	EventExit:     "EXIT",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}
