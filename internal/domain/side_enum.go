package domain

import "fmt"

type SideEnum int

const (
	Buy SideEnum = iota
	Sell
)

func (e SideEnum) String() string {
	return []string{"buy", "sell"}[e]
}

func ParseSide(s string) (SideEnum, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return Buy, fmt.Errorf("unknown side: %q", s)
}

// AskOrderEnum is the direction the ask side is kept in. The bid side is
// always highest price first.
type AskOrderEnum int

const (
	AskAscending AskOrderEnum = iota
	AskDescending
)

func (e AskOrderEnum) String() string {
	return []string{"ascending", "descending"}[e]
}

func ParseAskOrder(s string) (AskOrderEnum, error) {
	switch s {
	case "ascending":
		return AskAscending, nil
	case "descending":
		return AskDescending, nil
	}
	return AskAscending, fmt.Errorf("unknown ask order: %q", s)
}
