package bot

import (
	"testing"

	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

func TestNewConfiguresGatewayIntents(t *testing.T) {
	b, err := New(&model.Config{BotToken: "test-token", AppID: "app-1"}, nil)
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}

	intents := b.Session.Identify.Intents
	for _, want := range []discordgo.Intent{
		discordgo.IntentGuilds,
		discordgo.IntentGuildMembers,
		discordgo.IntentGuildModeration,
	} {
		if intents&want == 0 {
			t.Fatalf("missing gateway intent %d in %d", want, intents)
		}
	}
	if b.Session.StateEnabled {
		t.Fatal("state tracking should be disabled")
	}
}
