// internal/infra/telegram/notifier.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"outreach_engine/internal/domain/campaign"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Notifier posts the per-category cycle summary to the operator's chat using
// the gopkg.in/telebot.v3 library. It is strictly outbound: the bot never
// polls for updates.
type Notifier struct {
	bot    *telebot.Bot
	chatID int64
	log    *logrus.Logger
}

func NewNotifier(bot *telebot.Bot, chatID int64, log *logrus.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, log: log}
}

// CycleFinished sends the summary as a plain text message. Failures are
// returned for the caller to log; they never affect the cycle outcome.
func (n *Notifier) CycleFinished(_ context.Context, s *campaign.Summary) error {
	recipient := &telebot.User{ID: n.chatID}
	if _, err := n.bot.Send(recipient, formatSummary(s), &telebot.SendOptions{}); err != nil {
		return fmt.Errorf("send cycle summary to chat %d: %w", n.chatID, err)
	}
	n.log.Debugf("Cycle summary delivered to operator chat %d", n.chatID)
	return nil
}

func formatSummary(s *campaign.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Campaign cycle %s finished\n", s.ShortID())
	fmt.Fprintf(&b, "First touch: %d sent\n", s.Sent[campaign.CategoryFirstTouch])
	fmt.Fprintf(&b, "Follow-up: %d sent\n", s.Sent[campaign.CategoryFollowUp])
	fmt.Fprintf(&b, "Filler: %d sent\n", s.Sent[campaign.CategoryFiller])
	fmt.Fprintf(&b, "Failed: %d\n", s.FailedTotal())
	fmt.Fprintf(&b, "Duration: %s", s.Duration().Round(time.Second))
	return b.String()
}
