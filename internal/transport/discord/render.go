package discord

import (
	"fmt"
	"strconv"
	"time"

	"fanclub-bot/internal/config"
	"fanclub-bot/internal/domain"
	"github.com/bwmarrin/discordgo"
)

func (h *Handler) entryMessage() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: config.Render(h.opts.Messages.Entry, h.quizValues()),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    h.opts.Messages.StartButton,
						Style:    discordgo.SuccessButton,
						CustomID: StartButtonID,
					},
				},
			},
		},
	}
}

// questionResponse renders a prompt as an ephemeral message with one button per choice.
func (h *Handler) questionResponse(prompt domain.Prompt, notice string) *discordgo.InteractionResponse {
	header := config.Render(h.opts.Messages.QuestionHeader, map[string]string{
		"number": strconv.Itoa(prompt.Number),
		"total":  strconv.Itoa(prompt.Total),
	})
	content := header + "\n" + prompt.Text
	if notice != "" {
		content = notice + "\n\n" + content
	}

	buttons := make([]discordgo.MessageComponent, 0, len(prompt.Choices))
	for _, choice := range prompt.Choices {
		buttons = append(buttons, discordgo.Button{
			Label:    choice.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: AnswerCustomID(choice.Index),
		})
	}

	resp := ephemeral(content)
	resp.Data.Components = []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
	return resp
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func (h *Handler) quizValues() map[string]string {
	settings := h.service.Settings()
	return map[string]string{
		"role":      "<@&" + h.opts.RewardRoleID + ">",
		"questions": strconv.Itoa(settings.QuestionsPerApplication),
		"minutes":   strconv.Itoa(int(settings.TimeLimit / time.Minute)),
	}
}

// humanDuration prints a cooldown as days, hours and minutes, rounded up to a minute.
func humanDuration(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	days, minutes := minutes/(24*60), minutes%(24*60)
	hours, minutes := minutes/60, minutes%60
	switch {
	case days > 0 && hours == 0:
		return fmt.Sprintf("%dd", days)
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0 && minutes == 0:
		return fmt.Sprintf("%dh", hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
