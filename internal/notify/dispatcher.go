package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/model"
	"lottery/internal/observability/metrics"
)

// Notification channels.
const (
	ChannelMail = "mail"
	ChannelSMS  = "sms"
)

// Dispatcher turns a batch of winning records into one mail task and one
// SMS task on the pool.
type Dispatcher struct {
	pool   *Pool
	mailer Mailer
	sms    SMSSender
}

// NewDispatcher wires dependencies.
func NewDispatcher(pool *Pool, mailer Mailer, sms SMSSender) *Dispatcher {
	return &Dispatcher{pool: pool, mailer: mailer, sms: sms}
}

// NotifyWinners schedules the notifications and returns immediately. A
// rejected task is logged and counted; it is never retried.
func (d *Dispatcher) NotifyWinners(ctx context.Context, records []model.WinningRecord) {
	if len(records) == 0 {
		return
	}
	batch := append([]model.WinningRecord(nil), records...)

	d.submit(ctx, ChannelMail, func(ctx context.Context) error {
		var errs []error
		for _, r := range batch {
			if r.WinnerEmail == "" {
				continue
			}
			if err := d.mailer.SendMail(ctx, r.WinnerEmail, mailSubject, WinnerMessage(r)); err != nil {
				errs = append(errs, fmt.Errorf("mail to winner %d: %w", r.WinnerID, err))
			}
		}
		return errors.Join(errs...)
	})

	d.submit(ctx, ChannelSMS, func(ctx context.Context) error {
		var errs []error
		for _, r := range batch {
			if r.WinnerPhone == "" {
				continue
			}
			if err := d.sms.SendSMS(ctx, r.WinnerPhone, WinnerMessage(r)); err != nil {
				errs = append(errs, fmt.Errorf("sms to winner %d: %w", r.WinnerID, err))
			}
		}
		return errors.Join(errs...)
	})
}

func (d *Dispatcher) submit(ctx context.Context, channel string, run func(context.Context) error) {
	if err := d.pool.Submit(ctx, Task{Channel: channel, Run: run}); err != nil {
		metrics.RecordNotification(channel, "rejected")
		logger.ErrorCtx(ctx, "notification task rejected", zap.String("channel", channel), zap.Error(err))
	}
}
