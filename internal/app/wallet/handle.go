package wallet

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"server-staking-app/internal/pkg/generr"
	"server-staking-app/internal/pkg/util"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type depositReq struct {
	UserID uint64          `json:"user_id" binding:"required"`
	CurID  util.FlexString `json:"cur_id" binding:"required"`
	Symbol string          `json:"symbol"`
	DepAmt decimal.Decimal `json:"depamt"`
}

func (h *Handler) Deposit(c *gin.Context) {
	var req depositReq
	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Errorf("err: %+v", errors.Wrap(err, "should bind"))
		util.Fail(c, errors.Wrap(generr.ErrInvalidInput, err.Error()))
		return
	}
	if !req.DepAmt.IsPositive() {
		err = errors.Wrapf(generr.ErrInvalidInput, "depamt %s", req.DepAmt)
		log.Errorf("err: %+v", err)
		util.Fail(c, err)
		return
	}

	log.Infof("deposit req: %+v", req)

	entry, err := h.store.ApplyDelta(c.Request.Context(), req.UserID, req.CurID.String(), req.DepAmt, req.Symbol)
	if err != nil {
		log.Errorf("err: %+v", errors.WithMessage(err, "deposit"))
		util.Fail(c, err)
		return
	}
	util.Success(c, "Deposit to wallet successful", gin.H{
		"cur_id": req.CurID.String(),
		"amt":    entry.Amount,
		"sym":    entry.Symbol,
	})
}

func (h *Handler) GetBalance(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		log.Errorf("err: %+v", errors.Wrap(err, "parse 'user_id'"))
		util.Fail(c, errors.Wrap(generr.ErrInvalidInput, "user_id"))
		return
	}

	balance, err := h.store.GetBalance(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("err: %+v", errors.WithMessage(err, "get balance"))
		util.Fail(c, err)
		return
	}
	util.Success(c, "success", balance)
}
