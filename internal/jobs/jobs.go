// Package jobs holds the background jobs run by the api process.
package jobs

import (
	"context"
	"time"

	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/constant"
	"github.com/educhain/certchain/internal/metrics"
	"github.com/educhain/certchain/internal/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatusCounter interface {
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[constant.CertificateStatus]int64, error)
}

// StatusGauge refreshes the certificates-by-status gauge. It only reads.
type StatusGauge struct {
	counter StatusCounter
	logger  *zap.SugaredLogger
}

func NewStatusGauge(counter StatusCounter, logger *zap.SugaredLogger) *StatusGauge {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &StatusGauge{counter: counter, logger: logger}
}

func (j *StatusGauge) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := j.counter.CountByStatus(ctx, nil)
	if err != nil {
		j.logger.Errorf("Failed to refresh certificate status gauge: %v", err)
		return
	}

	for status, total := range counts {
		metrics.CertificatesByStatus.WithLabelValues(string(status)).Set(float64(total))
	}
}

// Start schedules the jobs and runs the gauge once so it is populated before the first tick.
// The returned scheduler must be stopped on shutdown. Returns nil when jobs are disabled.
func Start(cfg config.JobsConfig, counter StatusCounter, logger *zap.SugaredLogger) (*cron.Cron, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	gauge := NewStatusGauge(counter, logger)

	c := cron.New()
	if _, err := c.AddJob(cfg.StatusGaugeSpec, gauge); err != nil {
		return nil, err
	}

	go gauge.Run()
	c.Start()

	return c, nil
}
