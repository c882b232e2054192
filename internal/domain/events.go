package domain

import "time"

// Messages published to the push channel. Delivery is fire-and-forget; the
// billing core never depends on it succeeding.

type PlacedItem struct {
	OrderID      int64   `json:"order_id"`
	MenuItemName string  `json:"menu_item_name"`
	Quantity     int     `json:"quantity"`
	IsTakeaway   bool    `json:"is_takeaway"`
	Notes        string  `json:"notes,omitempty"`
	DinerName    *string `json:"diner_name,omitempty"`
}

type OrdersPlacedMessage struct {
	SessionID   int64        `json:"session_id"`
	TableNumber int          `json:"table_number"`
	OrderIDs    []int64      `json:"order_ids"`
	Items       []PlacedItem `json:"items"`
	TotalAmount float64      `json:"total_amount"`
	Timestamp   time.Time    `json:"timestamp"`
}

type StatusChangedMessage struct {
	OrderID      int64     `json:"order_id"`
	SessionID    int64     `json:"session_id"`
	MenuItemName string    `json:"menu_item_name"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	ChangedBy    string    `json:"changed_by"`
	Timestamp    time.Time `json:"timestamp"`
}

type PaymentReadyMessage struct {
	SessionID   int64     `json:"session_id"`
	TableNumber int       `json:"table_number"`
	Total       float64   `json:"total"`
	Timestamp   time.Time `json:"timestamp"`
}
