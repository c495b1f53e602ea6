package common

// Message is one entry of a deal's chat thread; append-only.
type Message struct {
	Id       string `json:"id"`
	DealId   string `json:"dealId"`
	SenderId string `json:"senderId"`
	Content  string `json:"content"`

	CreatedAt int64 `json:"createdAt"`
}
