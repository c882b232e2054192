package domain

type AddItemRequest struct {
	DinerName  string `json:"diner_name"`
	MenuItemID int64  `json:"menu_item_id"`
	Notes      string `json:"notes,omitempty"`
	IsShared   bool   `json:"is_shared,omitempty"`
	IsTakeaway bool   `json:"is_takeaway,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CreateSplitRequest struct {
	MenuItemID    int64    `json:"menu_item_id"`
	OriginalPrice float64  `json:"original_price"`
	SplitCount    int      `json:"split_count"`
	Participants  []string `json:"participants"`
}

type AdvanceStatusRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by,omitempty"`
}

type LineResponse struct {
	ID           int64   `json:"id"`
	SessionID    int64   `json:"session_id"`
	MenuItemID   int64   `json:"menu_item_id"`
	MenuItemName string  `json:"menu_item_name"`
	DinerName    *string `json:"diner_name,omitempty"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Notes        string  `json:"notes,omitempty"`
	IsShared     bool    `json:"is_shared"`
	IsTakeaway   bool    `json:"is_takeaway"`
	Status       string  `json:"status"`
	SplitID      *int64  `json:"split_id,omitempty"`
}

func NewLineResponse(l OrderLine) LineResponse {
	return LineResponse{
		ID:           l.ID,
		SessionID:    l.SessionID,
		MenuItemID:   l.MenuItemID,
		MenuItemName: l.MenuItemName,
		DinerName:    l.DinerName,
		Quantity:     l.Quantity,
		UnitPrice:    Round2(l.UnitPrice),
		Notes:        l.Notes,
		IsShared:     l.IsShared,
		IsTakeaway:   l.IsTakeaway,
		Status:       string(l.Status),
		SplitID:      l.SplitID,
	}
}

type SplitResponse struct {
	ID            int64    `json:"id"`
	SessionID     int64    `json:"session_id"`
	MenuItemID    int64    `json:"menu_item_id"`
	OriginalPrice float64  `json:"original_price"`
	SplitCount    int      `json:"split_count"`
	SplitPrice    float64  `json:"split_price"`
	Participants  []string `json:"participants"`
	Status        string   `json:"status"`
}

func NewSplitResponse(s SplitAgreement) SplitResponse {
	return SplitResponse{
		ID:            s.ID,
		SessionID:     s.SessionID,
		MenuItemID:    s.MenuItemID,
		OriginalPrice: Round2(s.OriginalPrice),
		SplitCount:    s.SplitCount,
		SplitPrice:    Round2(s.SplitPrice),
		Participants:  s.Participants,
		Status:        string(s.Status),
	}
}

type ConfirmResponse struct {
	SessionID int64   `json:"session_id"`
	OrderIDs  []int64 `json:"order_ids"`
}

// BillSummary carries presentation-rounded amounts; computation keeps full
// precision until the summary is assembled.
type BillSummary struct {
	Subtotal float64 `json:"subtotal"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`
}

type BillItem struct {
	MenuItemName string   `json:"menu_item_name"`
	Quantity     int      `json:"quantity"`
	Amount       float64  `json:"amount"`
	Shared       bool     `json:"shared"`
	Participants []string `json:"participants,omitempty"`
}

type DinerBill struct {
	DinerName string     `json:"diner_name"`
	Items     []BillItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	VAT       float64    `json:"vat"`
	Total     float64    `json:"total"`
}

type TableBillResponse struct {
	BillSummary
	PaymentReady bool `json:"payment_ready"`
}
