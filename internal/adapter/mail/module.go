package mail

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/config"
)

// Module provides a Sender; without SMTP configuration mail is a no-op.
var Module = fx.Provide(newSender)

type senderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSender(p senderParams) Sender {
	if p.Config.SMTPHost == "" {
		return NewNoopSender(p.Logger)
	}
	return NewSMTPSender(p.Config.SMTPHost, p.Config.SMTPPort, p.Config.SMTPUser, p.Config.SMTPPassword, p.Config.MailFrom)
}
