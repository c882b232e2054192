package handlers

import "net/http"

// Router wires the billing API. Writes are POST/DELETE, bill views are GET;
// all money amounts in responses are display-rounded.
func Router(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/sessions/{session_id}/cart/items", h.Cart.AddItem)
	mux.HandleFunc("POST /api/v1/cart/items/{line_id}/quantity", h.Cart.UpdateQuantity)
	mux.HandleFunc("DELETE /api/v1/cart/items/{line_id}", h.Cart.RemoveItem)
	mux.HandleFunc("DELETE /api/v1/sessions/{session_id}/cart", h.Cart.Clear)
	mux.HandleFunc("GET /api/v1/sessions/{session_id}/cart", h.Cart.List)

	mux.HandleFunc("POST /api/v1/sessions/{session_id}/splits", h.Split.CreateOrReuse)

	mux.HandleFunc("POST /api/v1/sessions/{session_id}/orders/confirm", h.Order.Confirm)
	mux.HandleFunc("GET /api/v1/sessions/{session_id}/orders", h.Order.List)
	mux.HandleFunc("POST /api/v1/orders/{order_id}/status", h.Order.AdvanceStatus)

	mux.HandleFunc("GET /api/v1/sessions/{session_id}/bill/my-share", h.Bill.MyShare)
	mux.HandleFunc("GET /api/v1/sessions/{session_id}/bill/total", h.Bill.TableTotal)
	mux.HandleFunc("GET /api/v1/sessions/{session_id}/bill/per-diner", h.Bill.PerDiner)

	return mux
}
