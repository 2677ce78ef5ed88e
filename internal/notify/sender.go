package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/model"
)

// Mailer delivers an email.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a text message.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) error
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) SendMail(ctx context.Context, to, subject, body string) error {
	logger.InfoCtx(ctx, "mail sent", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}

// LogSMSSender writes text messages to the log instead of sending them.
type LogSMSSender struct{}

func (LogSMSSender) SendSMS(ctx context.Context, phone, text string) error {
	logger.InfoCtx(ctx, "sms sent", zap.String("phone", phone), zap.String("text", text))
	return nil
}

const mailSubject = "Lottery result"

// WinnerMessage renders the congratulation text for one record.
func WinnerMessage(r model.WinningRecord) string {
	return fmt.Sprintf("Hi %s, congratulations on winning the %s of activity %q: %s. Draw time: %s.",
		r.WinnerName, r.PrizeTier.Label(), r.ActivityName, r.PrizeName,
		r.WinningTime.Format("2006-01-02 15:04:05"))
}
