package coinbase

type CoinbaseSubscribeChannel struct {
	Name       string   `json:"name"`
	ProductIds []string `json:"product_ids"`
}

// Channels holds plain channel names and CoinbaseSubscribeChannel values.
type CoinbaseSubscribeRequest struct {
	Type       string   `json:"type"`
	ProductIds []string `json:"product_ids"`
	Channels   []any    `json:"channels"`
}

type CoinbaseSnapshotMessage struct {
	ProductId string      `json:"product_id"`
	Asks      [][2]string `json:"asks"`
	Bids      [][2]string `json:"bids"`
}

type CoinbaseL2UpdateMessage struct {
	ProductId string      `json:"product_id"`
	Changes   [][3]string `json:"changes"`
}

type CoinbaseErrorMessage struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}
