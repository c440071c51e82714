package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"refund-settlement-engine/internal/pkg/config"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"

	"github.com/wneessen/go-mail"
)

// MailEscalator emails the operations inbox when a refund has used up its
// retries.
type MailEscalator struct {
	cfg config.MailConfig
}

func NewMailEscalator(cfg config.MailConfig) *MailEscalator {
	return &MailEscalator{cfg: cfg}
}

func (m *MailEscalator) Escalate(ctx context.Context, n commands.EscalationNotice) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return errs.Wrapf(err, "escalation sender %q", m.cfg.From)
	}
	if err := msg.To(m.cfg.EscalationTo); err != nil {
		return errs.Wrapf(err, "escalation recipient %q", m.cfg.EscalationTo)
	}
	msg.Subject(fmt.Sprintf("[refund] manual review needed for %s", n.RefundID))
	msg.SetBodyString(mail.TypeTextPlain, EscalationBody(n))

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return errs.Wrap(err, "smtp client")
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errs.Wrapf(err, "send escalation for refund %s", n.RefundID)
	}
	slog.Info("refund escalated by mail", "refund_id", n.RefundID, "to", m.cfg.EscalationTo)
	return nil
}

func EscalationBody(n commands.EscalationNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Refund %s could not be settled automatically.\n\n", n.RefundID)
	fmt.Fprintf(&b, "Reservation:    %s\n", n.ReservationID)
	fmt.Fprintf(&b, "Refund amount:  %d\n", n.RefundAmount)
	fmt.Fprintf(&b, "Retries used:   %d\n", n.RetryCount)
	fmt.Fprintf(&b, "Last failure:   %s\n", n.FailureReason)
	fmt.Fprintf(&b, "Failed at:      %s\n\n", n.OccurredAt.UTC().Format("2006-01-02 15:04:05 MST"))
	b.WriteString("Resolve it with: refundctl status ")
	b.WriteString(n.RefundID.String())
	b.WriteString(" COMPLETED|FAILED --note <text>\n")
	return b.String()
}

// LogEscalator records escalations in the log only.
type LogEscalator struct{}

func (LogEscalator) Escalate(_ context.Context, n commands.EscalationNotice) error {
	slog.Error("refund needs manual review",
		"refund_id", n.RefundID,
		"reservation_id", n.ReservationID,
		"refund_amount", n.RefundAmount,
		"retry_count", n.RetryCount,
		"failure_reason", n.FailureReason)
	return nil
}

var (
	_ commands.Escalator = (*MailEscalator)(nil)
	_ commands.Escalator = LogEscalator{}
)
