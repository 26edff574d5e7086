package staking

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
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type stakeReq struct {
	UserID uint64          `json:"user_id" binding:"required"`
	CurID  util.FlexString `json:"cur_id" binding:"required"`
	PlanID uint64          `json:"plan_id" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Stake(c *gin.Context) {
	var req stakeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("err: %+v", errors.Wrap(err, "should bind"))
		util.Fail(c, errors.Wrap(generr.ErrInvalidInput, err.Error()))
		return
	}

	log.Infof("stake req: %+v", req)

	pos, err := h.engine.OpenPosition(c.Request.Context(), req.UserID, req.CurID.String(), req.PlanID, req.Amount)
	if err != nil {
		log.Errorf("err: %+v", errors.WithMessage(err, "open position"))
		util.Fail(c, err)
		return
	}
	util.Success(c, "Staking successful", pos)
}

func (h *Handler) ListPositions(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		log.Errorf("err: %+v", errors.Wrap(err, "parse 'user_id'"))
		util.Fail(c, errors.Wrap(generr.ErrInvalidInput, "user_id"))
		return
	}
	positions, err := h.engine.ListPositions(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("err: %+v", errors.WithMessage(err, "list positions"))
		util.Fail(c, err)
		return
	}
	util.Success(c, "success", positions)
}
