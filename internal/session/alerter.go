package session

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/webhook"
)

// DiscordAlerter posts an embed to a Discord webhook when a session ends
// abnormally. With no webhook url it does nothing.
type DiscordAlerter struct {
	webhookUrl string
}

func NewDiscordAlerter(webhookUrl string) *DiscordAlerter {
	return &DiscordAlerter{webhookUrl: webhookUrl}
}

func (alerter *DiscordAlerter) Alert(product string, reason error) error {
	if alerter.webhookUrl == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := webhook.NewWithURL(alerter.webhookUrl)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	_, err = client.CreateEmbeds([]discord.Embed{
		discord.NewEmbedBuilder().
			SetTitle("Order book session terminated").
			SetColor(0xff0000).
			AddField("Product", product, true).
			AddField("Time", time.Now().UTC().Format(time.RFC3339), true).
			AddField("Reason", reason.Error(), false).
			Build()})
	return err
}
