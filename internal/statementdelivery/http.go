// Package statementdelivery manages delivery layer of statements.
package statementdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/fin-ledger/internal/domain"
	"github.com/go-petr/fin-ledger/internal/middleware"
	"github.com/go-petr/fin-ledger/pkg/errorspkg"
	"github.com/go-petr/fin-ledger/pkg/tokenpkg"
	"github.com/go-petr/fin-ledger/pkg/web"
)

// Service provides service layer interface needed by statement delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package statementdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateStatementParams) (domain.Statement, error)
	GetBalance(ctx context.Context, userID string) (domain.Balance, error)
	Get(ctx context.Context, id, userID string) (domain.Statement, error)
}

// Handler facilitates statement delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns statement handler.
func NewHandler(ss Service) *Handler {
	return &Handler{service: ss}
}

type createRequestURI struct {
	Type string `uri:"type" binding:"required,oneof=deposit withdraw"`
}

type createRequest struct {
	Amount      json.Number `json:"amount" binding:"required"`
	Description string      `json:"description" binding:"required"`
}

// Create handles http request to record a deposit or a withdrawal.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri createRequestURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidStatementType))

		return
	}

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Message(web.GetErrorMsg(ve)))

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateStatementParams{
		UserID:      authPayload.UserID,
		Type:        domain.StatementType(uri.Type),
		Amount:      req.Amount.String(),
		Description: req.Description,
	}

	createdStatement, err := h.service.Create(ctx, arg)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInsufficientFunds,
			domain.ErrInvalidAmount,
			domain.ErrInvalidStatementType,
			domain.ErrEmptyDescription:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, createdStatement)
}

// GetBalance handles http request to get the user's statements and balance.
func (h *Handler) GetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	balance, err := h.service.GetBalance(ctx, authPayload.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, balance)
}

type getRequest struct {
	StatementID string `uri:"statement_id" binding:"required"`
}

// Get handles http request to get a single statement.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrStatementNotFound))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	statement, err := h.service.Get(ctx, req.StatementID, authPayload.UserID)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound, domain.ErrStatementNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	// Amounts are rendered with two fractional digits on single statement reads.
	if amount, err := decimal.NewFromString(statement.Amount); err == nil {
		statement.Amount = amount.StringFixed(2)
	}

	gctx.JSON(http.StatusOK, statement)
}
