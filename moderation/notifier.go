package moderation

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DMSession is the slice of the Discord session the notifier needs.
type DMSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DMSender delivers moderation notifications to targets. Failure is a
// boolean, never an error: notification problems must not influence the
// action pipeline.
type DMSender interface {
	SendDM(userID, guildName, actionLabel, reason string) bool
}

// Notifier sends DM notifications through a Discord session.
type Notifier struct {
	session DMSession
}

// NewNotifier creates a notifier over the given session.
func NewNotifier(session DMSession) *Notifier {
	return &Notifier{session: session}
}

// SendDM tells the target what happened and why. Returns whether the
// message was delivered; closed DMs and blocks are normal outcomes and
// are only logged.
func (n *Notifier) SendDM(userID, guildName, actionLabel, reason string) bool {
	channel, err := n.session.UserChannelCreate(userID)
	if err != nil {
		log.Printf("Error creating private channel with user %s: %v", userID, err)
		return false
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("You have been %s in %s", actionLabel, guildName),
		Description: fmt.Sprintf("**Reason:** %s", reason),
		Color:       0xED4245,
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	if _, err := n.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		log.Printf("Error sending DM to user %s: %v", userID, err)
		return false
	}
	return true
}
