package referral

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"server-staking-app/internal/pkg/generr"
	"server-staking-app/internal/pkg/util"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) Register(c *gin.Context) {
	req := struct {
		ReferralID uint64 `json:"referral_id"`
	}{}
	// an empty body, sized or chunked, registers without a referrer
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Errorf("err: %+v", errors.Wrap(err, "should bind"))
		util.Fail(c, errors.Wrap(generr.ErrInvalidInput, err.Error()))
		return
	}

	u, err := h.resolver.Register(c.Request.Context(), req.ReferralID)
	if err != nil {
		log.Errorf("err: %+v", err)
		util.Fail(c, err)
		return
	}
	util.Success(c, "User registered successfully", gin.H{"user_id": u.ID, "referral_status": u.ReferralStatus})
}
