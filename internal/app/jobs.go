package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobCompactCart = "compact_cart"
	JobStorePing   = "store_ping"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 5m", a.SchedCompactCartTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 1m", a.SchedStorePingTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedCompactCartTask drops cart entries that no longer resolve.
func (a *Application) SchedCompactCartTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := a.session.Compact(ctx)
	if err != nil {
		zap.L().Error("cart compaction failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("cart compacted", zap.Int("dropped", n))
	}
}

// SchedStorePingTask logs blob store availability changes.
func (a *Application) SchedStorePingTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if !a.blob.Ping(ctx) {
		if a.storeUp.Swap(false) {
			zap.L().Error("blob store unreachable", zap.String("type", a.appConfig.Store.Type))
		}
		return
	}
	if !a.storeUp.Swap(true) {
		zap.L().Info("blob store reachable again", zap.String("type", a.appConfig.Store.Type))
	}
}
