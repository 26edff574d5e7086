package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"server-staking-app/config"
	"server-staking-app/internal/app/accrual"
	"server-staking-app/internal/app/bonus"
	"server-staking-app/internal/app/referral"
	"server-staking-app/internal/app/service"
	"server-staking-app/internal/app/staking"
	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/db"
	"server-staking-app/internal/pkg/util"
)

func main() {
	flag.Parse()
	config.Init()
	if level, err := log.ParseLevel(config.Server.LogLevel); err == nil {
		log.SetLevel(level)
	}

	gdb, err := db.Open(config.Database)
	if err != nil {
		log.Fatalf("open database: %+v", err)
	}
	defer func() { _ = db.Close(gdb) }()

	rdb, err := db.OpenRedis(context.Background(), config.Redis)
	if err != nil {
		log.Fatalf("open redis: %+v", err)
	}

	cfg := config.Staking
	if err = staking.SeedReference(context.Background(), gdb, cfg.Plans, cfg.LevelBonus); err != nil {
		log.Fatalf("seed reference data: %+v", err)
	}
	formula, err := bonus.FormulaByName(cfg.Bonus.Formula)
	if err != nil {
		log.Fatalf("bonus formula: %+v", err)
	}
	loc := util.LoadLocation(cfg.Timezone)

	wallets := wallet.NewStore(gdb, wallet.Options{
		MaxRetries:   cfg.Wallet.MaxRetries,
		RetryBackoff: cfg.Wallet.RetryBackoff,
	})
	resolver := referral.NewResolver(gdb, wallets)
	distributor := bonus.NewDistributor(gdb, resolver, wallets, formula, cfg.Bonus.CurrencySlot)
	engine := staking.NewEngine(gdb, wallets, distributor)
	scheduler := accrual.NewScheduler(gdb, wallets, accrual.NewGuard(rdb), accrual.Options{
		Location:        loc,
		BatchSize:       cfg.BatchSize,
		PositionTimeout: cfg.PositionTimeout,
		GuardTTL:        cfg.RunGuardTTL,
	})

	go service.RunHttp(service.Handlers{
		Referral: referral.NewHandler(resolver),
		Wallet:   wallet.NewHandler(wallets),
		Staking:  staking.NewHandler(engine),
		Accrual:  accrual.NewHandler(scheduler),
	})
	ticker, err := service.StakingTicker(loc, scheduler, engine)
	if err != nil {
		log.Fatalf("start ticker: %+v", err)
	}

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown Server ...")
	ticker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := service.GetHttp().Shutdown(ctx); err != nil {
		log.Errorf("Server Shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("Server exiting")
}
