package notifier

import (
	"context"

	"go.uber.org/zap"
	"wefix.backend/pkg/logger"
	"wefix.backend/pkg/utils"
)

// LogNotifier writes deliveries to the service log instead of sending them.
// For development only.
type LogNotifier struct {
	revealCode bool
}

// NewLogNotifier creates a log notifier. When revealCode is set the code is
// included in the log entry.
func NewLogNotifier(revealCode bool) *LogNotifier {
	return &LogNotifier{revealCode: revealCode}
}

func (n *LogNotifier) Send(ctx context.Context, phone, code string) error {
	fields := []zap.Field{zap.String("phone", utils.MaskPhone(phone))}
	if n.revealCode {
		fields = append(fields, zap.String("code", code))
	}
	logger.Info(ctx, "Verification code delivered to log", fields...)
	return nil
}
