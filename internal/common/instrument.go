package common

import "fmt"

// Instrument identifies a tradable asset by symbol and category. It is a
// plain value type: two instruments are the same instrument iff they
// compare equal.
type Instrument struct {
	Name string
	Type InstrumentType
}

func NewInstrument(name string, instType InstrumentType) Instrument {
	return Instrument{Name: name, Type: instType}
}

func (i Instrument) String() string {
	return fmt.Sprintf("Instrument+(%s-%s)", i.Name, i.Type)
}

// ExchangeType identifies the venue a record belongs to. Compared by value.
type ExchangeType struct {
	Name string
}

func NewExchangeType(name string) ExchangeType {
	return ExchangeType{Name: name}
}

// NoExchange is the venue placeholder for books constructed without one.
var NoExchange = ExchangeType{}

func (e ExchangeType) String() string {
	return fmt.Sprintf("Exchange+(%s)", e.Name)
}
