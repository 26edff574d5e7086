package accrual

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"server-staking-app/internal/pkg/util"
)

type Handler struct {
	scheduler *Scheduler
}

func NewHandler(scheduler *Scheduler) *Handler {
	return &Handler{scheduler: scheduler}
}

// ManualRun triggers the accrual for the current period. It is safe to call
// repeatedly.
func (h *Handler) ManualRun(c *gin.Context) {
	report, err := h.scheduler.Run(c.Request.Context(), time.Now())
	if err != nil {
		log.Errorf("err: %+v", errors.WithMessage(err, "manual accrual"))
		util.Fail(c, err)
		return
	}
	util.Success(c, "Returns processed", report)
}
