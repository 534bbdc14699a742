package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
)

const (
	colorPriceUp   = 0x2ECC71
	colorPriceDown = 0xE74C3C
)

type embedSender interface {
	CreateEmbeds(embeds []discord.Embed, opts ...rest.RequestOpt) (*discord.Message, error)
}

// PriceNotifier posts to a Discord webhook when the price has moved at least
// minChange percent since the last notification.
type PriceNotifier struct {
	sender    embedSender
	closer    func(ctx context.Context)
	minChange float64

	mu           sync.Mutex
	lastNotified float64
}

func NewPriceNotifier(id snowflake.ID, token string, minChange float64) *PriceNotifier {
	client := webhook.New(id, token)
	n := newPriceNotifier(client, minChange)
	n.closer = client.Close
	return n
}

func newPriceNotifier(sender embedSender, minChange float64) *PriceNotifier {
	return &PriceNotifier{
		sender:    sender,
		minChange: math.Abs(minChange),
	}
}

func (n *PriceNotifier) Publish(ctx context.Context, snap pricing.Snapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	// The first snapshot only sets the reference price
	if n.lastNotified == 0 {
		n.lastNotified = snap.Price
		return nil
	}

	change := (snap.Price - n.lastNotified) / n.lastNotified * 100
	if math.Abs(change) < n.minChange {
		return nil
	}

	color := colorPriceUp
	direction := "up"
	if change < 0 {
		color = colorPriceDown
		direction = "down"
	}

	ts := time.Now()
	if snap.LastUpdate != nil {
		ts = *snap.LastUpdate
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("WAGUS price update").
		SetDescriptionf("Price moved **%s %.2f%%** to **$%.6f**", direction, math.Abs(change), snap.Price).
		SetColor(color).
		AddField("Previous", fmt.Sprintf("$%.6f", n.lastNotified), true).
		AddField("Effective supply", fmt.Sprintf("%.0f", snap.EffectiveSupply), true).
		AddField("Daily volume", fmt.Sprintf("$%.0f", snap.DailyVolume), true).
		SetFooterText(fmt.Sprintf("cycle %d", snap.Cycle)).
		SetTimestamp(ts).
		Build()

	if _, err := n.sender.CreateEmbeds([]discord.Embed{embed}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to send price webhook: %w", err)
	}

	slog.Info("Price change notified",
		slog.String("type", "eco"),
		slog.String("cycle_id", snap.CycleID),
		slog.Float64("change_percent", change))

	n.lastNotified = snap.Price
	return nil
}

func (n *PriceNotifier) Close(ctx context.Context) {
	if n.closer != nil {
		n.closer(ctx)
	}
}
