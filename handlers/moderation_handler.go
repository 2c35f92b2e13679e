package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"mod-bot/bot"
	"mod-bot/model"
	"mod-bot/moderation"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const maxTimeoutDuration = 28 * 24 * time.Hour // Discord's hard limit

// HandleBan bans the target and records a BAN case.
func HandleBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()
	purgeDays := 0
	if opt, ok := opts["purge_days"]; ok {
		purgeDays = int(opt.IntValue())
	}

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeBan,
		DMLabel:     "banned",
		Actions: []moderation.Action{
			{Op: moderation.OpBanKick, Run: func() error {
				return s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, purgeDays)
			}},
		},
	}, target)
}

// HandleTempBan bans the target with an expiry; the scheduler lifts it.
func HandleTempBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	duration, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil || duration <= 0 {
		utils.SendErrorResponse(s, i, "Invalid duration. Use forms like 2h, 7d or 1w.")
		return
	}
	expiresAt := time.Now().UTC().Add(duration)

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeTempBan,
		ExpiresAt:   &expiresAt,
		DMLabel:     "temporarily banned",
		Actions: []moderation.Action{
			{Op: moderation.OpBanKick, Run: func() error {
				return s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0)
			}},
		},
	}, target)
}

// HandleUnban lifts a ban by user ID. The target is not a member, so
// hierarchy checks don't apply and no DM is attempted.
func HandleUnban(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	targetID := opts["user_id"].StringValue()
	reason := opts["reason"].StringValue()

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    targetID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeUnban,
		Actions: []moderation.Action{
			{Op: moderation.OpBanKick, Run: func() error {
				return s.GuildBanDelete(i.GuildID, targetID)
			}},
		},
	}, nil)
}

// HandleKick removes the target from the guild.
func HandleKick(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeKick,
		DMLabel:     "kicked",
		Actions: []moderation.Action{
			{Op: moderation.OpBanKick, Run: func() error {
				return s.GuildMemberDeleteWithReason(i.GuildID, target.ID, reason)
			}},
		},
	}, target)
}

// HandleWarn records a WARN case; the only side effect is the DM.
func HandleWarn(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeWarn,
		DMLabel:     "warned",
	}, target)
}

// HandleTimeout times the target out for the given duration.
func HandleTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	duration, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil || duration <= 0 || duration > maxTimeoutDuration {
		utils.SendErrorResponse(s, i, "Invalid duration. Use forms like 10m, 2h or 7d, up to 28d.")
		return
	}
	until := time.Now().UTC().Add(duration)

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeTimeout,
		ExpiresAt:   &until,
		DMLabel:     "timed out",
		Actions: []moderation.Action{
			{Op: moderation.OpTimeout, Run: func() error {
				return s.GuildMemberTimeout(i.GuildID, target.ID, &until)
			}},
		},
	}, target)
}

// HandleUntimeout lifts the target's timeout.
func HandleUntimeout(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeUntimeout,
		DMLabel:     "released from timeout",
		Actions: []moderation.Action{
			{Op: moderation.OpTimeout, Run: func() error {
				return s.GuildMemberTimeout(i.GuildID, target.ID, nil)
			}},
		},
	}, target)
}

// HandleJail assigns the configured jail role.
func HandleJail(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	serverCfg, ok := b.GetConfig().ServerConfigs[i.GuildID]
	if !ok || serverCfg.JailRoleID == "" {
		utils.SendErrorResponse(s, i, "No jail role is configured for this server.")
		return
	}
	if jailed, err := b.Status.IsJailed(i.GuildID, target.ID); err != nil {
		log.Printf("Error checking jail status for user %s: %v", target.ID, err)
		utils.SendErrorResponse(s, i, "Failed to check the target's status.")
		return
	} else if jailed {
		utils.SendErrorResponse(s, i, fmt.Sprintf("<@%s> is already jailed.", target.ID))
		return
	}

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeJail,
		DMLabel:     "jailed",
		Actions: []moderation.Action{
			{Op: moderation.OpMessages, Run: func() error {
				return s.GuildMemberRoleAdd(i.GuildID, target.ID, serverCfg.JailRoleID)
			}},
		},
	}, target)
}

// HandleUnjail removes the configured jail role.
func HandleUnjail(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	serverCfg, ok := b.GetConfig().ServerConfigs[i.GuildID]
	if !ok || serverCfg.JailRoleID == "" {
		utils.SendErrorResponse(s, i, "No jail role is configured for this server.")
		return
	}
	if jailed, err := b.Status.IsJailed(i.GuildID, target.ID); err != nil {
		log.Printf("Error checking jail status for user %s: %v", target.ID, err)
		utils.SendErrorResponse(s, i, "Failed to check the target's status.")
		return
	} else if !jailed {
		utils.SendErrorResponse(s, i, fmt.Sprintf("<@%s> is not jailed.", target.ID))
		return
	}

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    model.CaseTypeUnjail,
		DMLabel:     "released from jail",
		Actions: []moderation.Action{
			{Op: moderation.OpMessages, Run: func() error {
				return s.GuildMemberRoleRemove(i.GuildID, target.ID, serverCfg.JailRoleID)
			}},
		},
	}, target)
}

// HandlePollBan records a POLLBAN restriction case.
func HandlePollBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	handleRestriction(s, i, b, model.CaseTypePollBan, "banned from creating polls")
}

// HandlePollUnban lifts a POLLBAN restriction.
func HandlePollUnban(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	handleRestriction(s, i, b, model.CaseTypePollUnban, "allowed to create polls again")
}

// HandleSnippetBan records a SNIPPETBAN restriction case.
func HandleSnippetBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	handleRestriction(s, i, b, model.CaseTypeSnippetBan, "banned from using snippets")
}

// HandleSnippetUnban lifts a SNIPPETBAN restriction.
func HandleSnippetUnban(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	handleRestriction(s, i, b, model.CaseTypeSnippetUnban, "allowed to use snippets again")
}

// handleRestriction covers the restriction types whose only state lives
// in the case table: no external Discord action, only the case row that
// the status checker consults.
func handleRestriction(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, caseType model.CaseType, dmLabel string) {
	opts := optionMap(leafOptions(i.ApplicationCommandData()))
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	var active bool
	var err error
	switch caseType {
	case model.CaseTypePollBan, model.CaseTypePollUnban:
		active, err = b.Status.IsPollBanned(i.GuildID, target.ID)
	case model.CaseTypeSnippetBan, model.CaseTypeSnippetUnban:
		active, err = b.Status.IsSnippetBanned(i.GuildID, target.ID)
	}
	if err != nil {
		log.Printf("Error checking restriction status for user %s: %v", target.ID, err)
		utils.SendErrorResponse(s, i, "Failed to check the target's status.")
		return
	}

	applying := len(caseType.Reverses()) == 0
	if applying && active {
		utils.SendErrorResponse(s, i, fmt.Sprintf("<@%s> already has this restriction.", target.ID))
		return
	}
	if !applying && !active {
		utils.SendErrorResponse(s, i, fmt.Sprintf("<@%s> has no active restriction of this kind.", target.ID))
		return
	}

	runModeration(s, i, b, moderation.Request{
		GuildID:     i.GuildID,
		TargetID:    target.ID,
		ModeratorID: i.Member.User.ID,
		Reason:      reason,
		CaseType:    caseType,
		DMLabel:     dmLabel,
	}, target)
}

// runModeration applies the shared precondition checks, defers the
// response, then hands the request to the coordinator. The coordinator
// reports back through the closure, which sends exactly one follow-up.
func runModeration(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, req moderation.Request, target *discordgo.User) {
	if target != nil && !checkTargetPreconditions(s, i, b, target) {
		return
	}

	if guild, err := s.Guild(i.GuildID); err == nil {
		req.GuildName = guild.Name
	}

	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	req.Report = func(out moderation.Outcome) {
		reportOutcome(s, i, b, req, out)
	}
	b.Coordinator.Execute(context.Background(), req)
}

// checkTargetPreconditions rejects self-targeting, bot-targeting, the
// guild owner, and targets whose permission rank is not below the
// moderator's.
func checkTargetPreconditions(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, target *discordgo.User) bool {
	actor := i.Member.User
	if target.ID == actor.ID {
		utils.SendErrorResponse(s, i, "You cannot moderate yourself.")
		return false
	}
	if target.ID == b.GetConfig().AppID {
		utils.SendErrorResponse(s, i, "You cannot moderate the bot.")
		return false
	}

	guild, err := s.Guild(i.GuildID)
	if err == nil && guild.OwnerID == target.ID {
		utils.SendErrorResponse(s, i, "You cannot moderate the server owner.")
		return false
	}

	targetMember, err := s.GuildMember(i.GuildID, target.ID)
	if err != nil {
		// Not a member (e.g. already left); nothing to rank-compare.
		return true
	}

	actorRank, err := b.Permissions.GetUserPermissionRank(i.GuildID, i.Member.Roles)
	if err != nil {
		log.Printf("Error resolving actor rank: %v", err)
		utils.SendErrorResponse(s, i, "Failed to resolve permission ranks.")
		return false
	}
	targetRank, err := b.Permissions.GetUserPermissionRank(i.GuildID, targetMember.Roles)
	if err != nil {
		log.Printf("Error resolving target rank: %v", err)
		utils.SendErrorResponse(s, i, "Failed to resolve permission ranks.")
		return false
	}
	if targetRank >= actorRank && !isSysadmin(b, actor.ID) {
		utils.SendErrorResponse(s, i, "You cannot moderate a member with an equal or higher rank.")
		return false
	}
	return true
}

func reportOutcome(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, req moderation.Request, out moderation.Outcome) {
	logChannel := b.GetConfig().LogChannelID

	if out.Err != nil {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Failed to %s <@%s>: %v", actionVerb(req.CaseType), req.TargetID, out.Err))
		utils.LogError(s, logChannel, "Moderation", string(req.CaseType),
			fmt.Sprintf("Target <@%s> by <@%s>: %v", req.TargetID, req.ModeratorID, out.Err))
		return
	}

	embed := buildOutcomeEmbed(req, out)
	utils.SendFollowUpEmbed(s, i.Interaction, embed)

	if out.Case == nil {
		utils.LogWarn(s, logChannel, "Moderation", string(req.CaseType),
			fmt.Sprintf("Target <@%s> by <@%s>: action executed but the audit case failed: %v", req.TargetID, req.ModeratorID, out.CaseErr))
		return
	}
	utils.LogInfo(s, logChannel, "Moderation", string(req.CaseType),
		fmt.Sprintf("Target <@%s> by <@%s> (case #%d, DM sent: %t)", req.TargetID, req.ModeratorID, out.Case.CaseNumber, out.DMSent))
}

func buildOutcomeEmbed(req moderation.Request, out moderation.Outcome) *discordgo.MessageEmbed {
	title := fmt.Sprintf("%s | Case #%d", req.CaseType, caseNumberOf(out))
	if out.Case == nil {
		title = fmt.Sprintf("%s | case record failed", req.CaseType)
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: 0xED4245,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target", Value: fmt.Sprintf("<@%s>", req.TargetID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", req.ModeratorID), Inline: true},
			{Name: "DM sent", Value: fmt.Sprintf("%t", out.DMSent), Inline: true},
			{Name: "Reason", Value: req.Reason},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if req.ExpiresAt != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", req.ExpiresAt.Unix()), Inline: true,
		})
	}
	if out.Case == nil {
		embed.Description = "⚠️ The action was executed, but the audit case could not be recorded. Flag this for manual review."
	}
	return embed
}

func caseNumberOf(out moderation.Outcome) int64 {
	if out.Case != nil {
		return out.Case.CaseNumber
	}
	return 0
}

func actionVerb(t model.CaseType) string {
	switch t {
	case model.CaseTypeBan, model.CaseTypeTempBan:
		return "ban"
	case model.CaseTypeUnban:
		return "unban"
	case model.CaseTypeKick:
		return "kick"
	case model.CaseTypeWarn:
		return "warn"
	case model.CaseTypeTimeout:
		return "time out"
	case model.CaseTypeUntimeout:
		return "release"
	case model.CaseTypeJail:
		return "jail"
	case model.CaseTypeUnjail:
		return "unjail"
	default:
		return "restrict"
	}
}
