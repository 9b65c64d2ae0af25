package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanclub-bot/internal/app"
	"fanclub-bot/internal/config"
	"fanclub-bot/internal/domain"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const interactionTimeout = 10 * time.Second

// Options configure which guild and command the handler serves.
type Options struct {
	GuildID      string
	SetupCommand string
	RewardRoleID string
	Messages     config.Messages
}

// Handler routes Discord interactions to the fan application use cases.
type Handler struct {
	client  Client
	service *app.FanService
	opts    Options
	log     zerolog.Logger
}

func NewHandler(client Client, service *app.FanService, opts Options, log zerolog.Logger) *Handler {
	return &Handler{
		client:  client,
		service: service,
		opts:    opts,
		log:     log.With().Str("component", "discord").Logger(),
	}
}

// Commands lists the slash commands registered in the guild.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	adminOnly := int64(discordgo.PermissionAdministrator)
	return []*discordgo.ApplicationCommand{
		{
			Name:                     h.opts.SetupCommand,
			Description:              "Post the fan application message in this channel",
			DefaultMemberPermissions: &adminOnly,
		},
	}
}

// RegisterCommands replaces the guild's commands with Commands().
func (h *Handler) RegisterCommands(ctx context.Context, appID string) error {
	created, err := h.client.ApplicationCommandBulkOverwrite(appID, h.opts.GuildID, h.Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	h.log.Info().Int("count", len(created)).Str("guild", h.opts.GuildID).Msg("commands registered")
	return nil
}

// OnReady registers the setup command once the gateway session is up.
func (h *Handler) OnReady(_ *discordgo.Session, r *discordgo.Ready) {
	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	if err := h.RegisterCommands(ctx, appID); err != nil {
		h.log.Error().Err(err).Msg("could not register commands")
	}
}

// OnInteractionCreate is the discordgo event callback.
func (h *Handler) OnInteractionCreate(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	if err := h.Handle(ctx, ic.Interaction); err != nil {
		h.log.Error().Err(err).Str("interaction", ic.ID).Msg("interaction failed")
	}
}

// Handle dispatches one interaction.
func (h *Handler) Handle(ctx context.Context, i *discordgo.Interaction) error {
	if i.GuildID != h.opts.GuildID {
		h.log.Debug().Str("guild", i.GuildID).Msg("ignoring interaction from another guild")
		return nil
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		return h.handleComponent(ctx, i)
	default:
		h.log.Debug().Stringer("type", i.Type).Msg("ignoring interaction type")
		return nil
	}
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) error {
	name := i.ApplicationCommandData().Name
	if name != h.opts.SetupCommand {
		h.log.Warn().Str("command", name).Msg("unknown command")
		return nil
	}

	if _, err := h.client.ChannelMessageSendComplex(i.ChannelID, h.entryMessage(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post application message: %w", err)
	}
	h.log.Info().Str("channel", i.ChannelID).Msg("application message posted")
	return h.respond(ctx, i, ephemeral(h.opts.Messages.SetupDone))
}

func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) error {
	action, err := ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return err
	}
	switch action.Kind {
	case KindStart:
		return h.handleStart(ctx, i)
	case KindAnswer:
		return h.handleAnswer(ctx, i, action.AnswerIndex)
	default:
		h.log.Warn().Str("custom_id", action.Raw).Msg("unknown component interaction")
		return nil
	}
}

func (h *Handler) handleStart(ctx context.Context, i *discordgo.Interaction) error {
	member, err := memberOf(i)
	if err != nil {
		return err
	}

	res, err := h.service.Start(ctx, member.UserID)
	if err != nil {
		return fmt.Errorf("start application: %w", err)
	}
	if res.RetryIn > 0 {
		h.log.Info().Str("user", member.UserID).Dur("retry_in", res.RetryIn).Msg("application refused, cooling down")
		msg := config.Render(h.opts.Messages.CoolingDown, map[string]string{"retry": humanDuration(res.RetryIn)})
		return h.respond(ctx, i, ephemeral(msg))
	}

	h.log.Info().
		Str("user", member.UserID).
		Str("application", res.ApplicationID).
		Bool("replaced", res.Replaced).
		Msg("application started")

	notice := ""
	if res.Replaced {
		notice = h.opts.Messages.Replaced
	}
	return h.respond(ctx, i, h.questionResponse(res.Prompt, notice))
}

func (h *Handler) handleAnswer(ctx context.Context, i *discordgo.Interaction, index int) error {
	member, err := memberOf(i)
	if err != nil {
		return err
	}

	res, err := h.service.Answer(ctx, member, index)
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound):
		h.log.Warn().Str("user", member.UserID).Msg("answer without an active application")
		return h.respond(ctx, i, ephemeral(h.opts.Messages.NoApplication))
	case errors.Is(err, domain.ErrAnswerOutOfRange):
		h.log.Warn().Err(err).Str("user", member.UserID).Msg("stale answer button")
		return h.respond(ctx, i, ephemeral(h.opts.Messages.StaleButton))
	case err != nil:
		return fmt.Errorf("answer application: %w", err)
	}

	h.log.Info().
		Str("user", member.UserID).
		Str("application", res.ApplicationID).
		Stringer("outcome", res.Outcome).
		Bool("role_granted", res.RoleGranted).
		Msg("answer processed")

	switch res.Outcome {
	case domain.OutcomeNextQuestion:
		return h.respond(ctx, i, h.questionResponse(res.Prompt, ""))
	case domain.OutcomePassed:
		return h.respond(ctx, i, ephemeral(h.opts.Messages.RoleGranted))
	case domain.OutcomeFailedTimeout:
		return h.respond(ctx, i, ephemeral(config.Render(h.opts.Messages.TimeExpired, h.quizValues())))
	default:
		return h.respond(ctx, i, ephemeral(h.opts.Messages.WrongAnswer))
	}
}

func (h *Handler) respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	if err := h.client.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("respond to interaction: %w", err)
	}
	return nil
}

func memberOf(i *discordgo.Interaction) (domain.Member, error) {
	if i.Member == nil || i.Member.User == nil {
		return domain.Member{}, domain.ErrMissingMember
	}
	return domain.Member{
		UserID: i.Member.User.ID,
		Roles:  i.Member.Roles,
	}, nil
}
