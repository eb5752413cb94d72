package domain

type ExchangeEnum int

const (
	Coinbase ExchangeEnum = iota
)

func (e ExchangeEnum) String() string {
	return []string{"Coinbase"}[e]
}
