package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Order is a single resting or incoming interest. Its price is fixed for its
// lifetime; its volume only ever goes down through DecreaseVolume.
type Order struct {
	price  decimal.Decimal
	volume decimal.Decimal
}

func NewOrder(price decimal.Decimal, volume decimal.Decimal) *Order {
	return &Order{price: price, volume: volume}
}

func (o *Order) Price() decimal.Decimal {
	return o.price
}

func (o *Order) Volume() decimal.Decimal {
	return o.volume
}

// DecreaseVolume subtracts amount from the order's volume. Callers must keep
// 0 <= amount <= Volume(); nothing is clamped here.
func (o *Order) DecreaseVolume(amount decimal.Decimal) {
	o.volume = o.volume.Sub(amount)
}

func (o *Order) Level() PriceLevel {
	return PriceLevel{Price: o.price, Volume: o.volume}
}

func (o *Order) String() string {
	return formatLevel(o.price, o.volume)
}

// CompareAscending orders by price, lowest first.
func CompareAscending(a, b *Order) int {
	return a.price.Cmp(b.price)
}

// CompareDescending orders by price, highest first.
func CompareDescending(a, b *Order) int {
	return b.price.Cmp(a.price)
}

func formatLevel(price decimal.Decimal, volume decimal.Decimal) string {
	return fmt.Sprintf("%s@%s", volume.StringFixed(4), price.StringFixed(2))
}
