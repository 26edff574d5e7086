package service

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"server-staking-app/config"
	"server-staking-app/internal/app/accrual"
	"server-staking-app/internal/app/referral"
	"server-staking-app/internal/app/staking"
	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/pkg/metrics"
	"server-staking-app/internal/pkg/middleware"
)

var srv *http.Server

// Handlers are the api entry points of each component.
type Handlers struct {
	Referral *referral.Handler
	Wallet   *wallet.Handler
	Staking  *staking.Handler
	Accrual  *accrual.Handler
}

func NewRouter(h Handlers) *gin.Engine {
	if config.Server.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID)
	pprof.Register(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Timeout(config.Server.RequestTimeout))
	api.POST("/register", h.Referral.Register)
	api.POST("/deposit", h.Wallet.Deposit)
	api.GET("/wallet/:user_id", h.Wallet.GetBalance)
	api.POST("/staking", h.Staking.Stake)
	api.GET("/staking/:user_id", h.Staking.ListPositions)
	api.POST("/returns/run", h.Accrual.ManualRun)
	return r
}

func RunHttp(h Handlers) {
	srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler: NewRouter(h),
	}

	log.Infof("Start to listen %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}
}

func GetHttp() *http.Server {
	return srv
}
