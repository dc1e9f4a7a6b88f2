package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/domain/ledger"
	"smartmart/internal/infrastructure/http/v1/dto"
	"smartmart/internal/infrastructure/storage/postgres/ledger_repo"
)

// StockHandler exposes the stock ledger read side: per-product history,
// per-document entries and turnover totals.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
	repo    *ledger_repo.LedgerRepo
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service, repo *ledger_repo.LedgerRepo) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		repo:        repo,
	}
}

// History handles GET /stock/history/:productId - ledger entries, most
// recent first.
func (h *StockHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter, ok := h.parseHistoryFilter(c)
	if !ok {
		return
	}

	entries, err := h.service.History(ctx, productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LedgerHistoryResponse{
		ProductID: productID.String(),
		Entries:   entries,
	})
}

// ByTransaction handles GET /stock/by-transaction/:transactionId - the
// entries one document produced.
func (h *StockHandler) ByTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	transactionID, err := id.Parse(c.Param("transactionId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entries, err := h.service.EntriesByTransaction(ctx, transactionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Turnover handles GET /stock/turnover/:productId - total in/out over a
// period.
func (h *StockHandler) Turnover(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter, ok := h.parseHistoryFilter(c)
	if !ok {
		return
	}

	in, out, err := h.repo.Turnover(ctx, productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"productId": productID.String(),
		"totalIn":   in,
		"totalOut":  out,
	})
}

// parseHistoryFilter reads the common history query parameters. Returns
// false when the request was already rejected.
func (h *StockHandler) parseHistoryFilter(c *gin.Context) (ledger.HistoryFilter, bool) {
	filter := ledger.HistoryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		h.Error(c, apperror.NewValidation("invalid 'from' date (RFC 3339 expected)"))
		return filter, false
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		h.Error(c, apperror.NewValidation("invalid 'to' date (RFC 3339 expected)"))
		return filter, false
	}

	if typesStr := c.Query("types"); typesStr != "" {
		for _, t := range strings.Split(typesStr, ",") {
			txType := entity.TransactionType(strings.TrimSpace(t))
			if !txType.Valid() {
				h.Error(c, apperror.NewValidation("unknown transaction type").WithDetail("type", string(txType)))
				return filter, false
			}
			filter.Types = append(filter.Types, txType)
		}
	}

	return filter, true
}
