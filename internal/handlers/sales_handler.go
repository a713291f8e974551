package handlers

import (
	"context"
	"net/http"

	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/middleware"
	"ev-dealer-hub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type StockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type paymentFunc func(ctx context.Context, sess dealership.Session, id uint, amount decimal.Decimal) (dealership.PaymentResult, error)

type stockFunc func(ctx context.Context, sess dealership.Session, id uint, qty int) (models.Inventory, error)

// --- POST: /api/orders/:id/payments ---
func (s *Server) PayOrder(c *gin.Context) {
	s.pay(c, s.reg.RecordOrderPayment)
}

// --- POST: /api/debts/:id/payments ---
func (s *Server) PayDebt(c *gin.Context) {
	s.pay(c, s.reg.RecordDebtPayment)
}

func (s *Server) pay(c *gin.Context, record paymentFunc) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var input PaymentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a number"})
		return
	}
	res, err := record(c.Request.Context(), middleware.CurrentSession(c), id, input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- POST: /api/debts/refresh ---
func (s *Server) RefreshDebts(c *gin.Context) {
	changed, err := s.reg.RefreshDebtStatuses(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

// --- POST: /api/inventory/:id/reserve ---
func (s *Server) ReserveStock(c *gin.Context) {
	s.moveStock(c, s.reg.Reserve)
}

// --- POST: /api/inventory/:id/release ---
func (s *Server) ReleaseStock(c *gin.Context) {
	s.moveStock(c, s.reg.Release)
}

func (s *Server) moveStock(c *gin.Context, move stockFunc) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var input StockRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity is required"})
		return
	}
	inv, err := move(c.Request.Context(), middleware.CurrentSession(c), id, input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// --- GET: /api/orders/quote?dealer_id=&vehicle_id= ---
// Dealer-bound callers are always quoted their own dealer's price.
func (s *Server) GetQuote(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	dealerID, okD := idFrom(c.Query("dealer_id"))
	if sess.Scoped() && sess.DealerID != nil {
		dealerID, okD = *sess.DealerID, true
	}
	vehicleID, okV := idFrom(c.Query("vehicle_id"))
	if !okD || !okV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dealer_id and vehicle_id are required"})
		return
	}
	q, err := s.reg.QuotePrice(dealerID, vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
