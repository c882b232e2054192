package handlers

import (
	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
)

type Handler struct {
	Cart  *CartHandler
	Split *SplitHandler
	Order *OrderHandler
	Bill  *BillHandler
}

func New(svc *service.Service, lg *logger.Logger) *Handler {
	return &Handler{
		Cart:  &CartHandler{svc: svc.Cart, lg: lg},
		Split: &SplitHandler{svc: svc.Split, lg: lg},
		Order: &OrderHandler{svc: svc.Lifecycle, lg: lg},
		Bill:  &BillHandler{svc: svc.Bill, lg: lg},
	}
}
