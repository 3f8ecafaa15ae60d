package database

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

var slowLabel = color.New(color.FgYellow, color.Bold).SprintFunc()

type slowQueryHook struct {
	slowTime time.Duration
	log      logrus.FieldLogger
}

var _ bun.QueryHook = (*slowQueryHook)(nil)

func newSlowQueryHook(threshold time.Duration, log logrus.FieldLogger) *slowQueryHook {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &slowQueryHook{slowTime: threshold, log: log}
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	h.log.WithFields(logrus.Fields{
		"duration":       duration.Round(time.Microsecond),
		"slow_threshold": h.slowTime,
		"operation":      event.Operation(),
		"query":          event.Query,
	}).Warn(slowLabel("slow query"))
}
