package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"fanclub-bot/internal/app"
	"fanclub-bot/internal/config"
	"fanclub-bot/internal/domain"
	"fanclub-bot/internal/infra/memory"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	testGuild = "guild-1"
	testRole  = "role-fan"
)

func TestSetupCommandPostsEntryMessage(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)

	err := h.Handle(context.Background(), commandInteraction("setupfanapplicationchannel"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("expected one channel message, got %d", len(client.sent))
	}
	msg := client.sent[0]
	if !strings.Contains(msg.Content, "<@&"+testRole+">") || !strings.Contains(msg.Content, "5 simple questions") {
		t.Fatalf("unexpected entry message %q", msg.Content)
	}
	if ids := buttonIDs(t, msg.Components); len(ids) != 1 || ids[0] != StartButtonID {
		t.Fatalf("expected start button, got %v", ids)
	}
	if len(client.responses) != 1 || client.responses[0].Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("expected ephemeral acknowledgement, got %+v", client.responses)
	}
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	if err := h.Handle(context.Background(), commandInteraction("something-else")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(client.sent) != 0 || len(client.responses) != 0 {
		t.Fatalf("expected no platform calls")
	}
}

func TestOtherGuildIsIgnored(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	i := commandInteraction("setupfanapplicationchannel")
	i.GuildID = "elsewhere"
	if err := h.Handle(context.Background(), i); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(client.sent) != 0 {
		t.Fatalf("expected no message for another guild")
	}
}

func TestStartButtonAsksFirstQuestion(t *testing.T) {
	h, client, sessions := newTestHandler(t, 10, 5)

	if err := h.Handle(context.Background(), componentInteraction(StartButtonID, "u1")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	application, ok := sessions.Get("u1")
	if !ok {
		t.Fatalf("expected application stored")
	}
	resp := client.last(t)
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("expected ephemeral question")
	}
	if !strings.HasPrefix(resp.Data.Content, "Question 1/5\n"+application.CurrentQuestion().Text) {
		t.Fatalf("unexpected content %q", resp.Data.Content)
	}
	if ids := buttonIDs(t, resp.Data.Components); len(ids) != 2 {
		t.Fatalf("expected two answer buttons, got %v", ids)
	}
}

func TestFullPassGrantsRole(t *testing.T) {
	h, client, sessions := newTestHandler(t, 10, 5)
	ctx := context.Background()

	if err := h.Handle(ctx, componentInteraction(StartButtonID, "u1")); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 5; i++ {
		application, _ := sessions.Get("u1")
		id := AnswerCustomID(application.CurrentQuestion().CorrectAnswer)
		if err := h.Handle(ctx, componentInteraction(id, "u1")); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if got := client.last(t).Data.Content; got != "Role granted!" {
		t.Fatalf("expected role granted reply, got %q", got)
	}
	if len(client.roleAdds) != 1 || client.roleAdds[0] != testGuild+"/u1/"+testRole {
		t.Fatalf("expected role add, got %v", client.roleAdds)
	}
	if len(client.responses) != 6 {
		t.Fatalf("expected exactly one reply per interaction, got %d", len(client.responses))
	}
}

func TestFourCorrectThenWrong(t *testing.T) {
	h, client, sessions := newTestHandler(t, 10, 5)
	ctx := context.Background()

	if err := h.Handle(ctx, componentInteraction(StartButtonID, "u1")); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 5; i++ {
		application, _ := sessions.Get("u1")
		q := application.CurrentQuestion()
		choice := q.CorrectAnswer
		if i == 4 {
			choice = (q.CorrectAnswer + 1) % len(q.Answers)
		}
		if err := h.Handle(ctx, componentInteraction(AnswerCustomID(choice), "u1")); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if got := client.last(t).Data.Content; !strings.HasPrefix(got, "Wrong answer") {
		t.Fatalf("expected wrong answer reply, got %q", got)
	}
	if _, ok := sessions.Get("u1"); ok {
		t.Fatalf("expected application removed")
	}
	if len(client.roleAdds) != 0 {
		t.Fatalf("expected no role add")
	}
}

func TestStaleAnswerGetsGracefulReply(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)

	if err := h.Handle(context.Background(), componentInteraction("answer1", "u1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := client.last(t).Data.Content; !strings.Contains(got, "no active application") {
		t.Fatalf("expected no application reply, got %q", got)
	}
}

func TestMalformedAnswerIDIsAnError(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	err := h.Handle(context.Background(), componentInteraction("answerX", "u1"))
	if !errors.Is(err, domain.ErrMalformedCustomID) {
		t.Fatalf("expected malformed id error, got %v", err)
	}
	if len(client.responses) != 0 {
		t.Fatalf("expected no reply")
	}
}

func TestUnknownComponentIsIgnored(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	if err := h.Handle(context.Background(), componentInteraction("poll-vote-1", "u1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(client.responses) != 0 {
		t.Fatalf("expected no reply")
	}
}

func TestMissingMemberIsAnError(t *testing.T) {
	h, _, _ := newTestHandler(t, 10, 5)
	i := componentInteraction(StartButtonID, "u1")
	i.Member = nil
	if err := h.Handle(context.Background(), i); !errors.Is(err, domain.ErrMissingMember) {
		t.Fatalf("expected missing member, got %v", err)
	}
}

func TestRestartTellsUserPreviousAttemptWasDiscarded(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	ctx := context.Background()
	for n := 0; n < 2; n++ {
		if err := h.Handle(ctx, componentInteraction(StartButtonID, "u1")); err != nil {
			t.Fatalf("start %d: %v", n, err)
		}
	}
	if got := client.last(t).Data.Content; !strings.HasPrefix(got, "Your previous application was discarded.") {
		t.Fatalf("expected replaced notice, got %q", got)
	}
}

func TestSendFailureIsReturned(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	client.respondErr = errors.New("unknown interaction")
	if err := h.Handle(context.Background(), componentInteraction(StartButtonID, "u1")); err == nil {
		t.Fatalf("expected respond error")
	}
}

func TestRegisterCommandsIsAdminOnly(t *testing.T) {
	h, client, _ := newTestHandler(t, 10, 5)
	if err := h.RegisterCommands(context.Background(), "app-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(client.commands) != 1 {
		t.Fatalf("expected one command, got %d", len(client.commands))
	}
	cmd := client.commands[0]
	if cmd.Name != "setupfanapplicationchannel" || cmd.DefaultMemberPermissions == nil ||
		*cmd.DefaultMemberPermissions != int64(discordgo.PermissionAdministrator) {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestHumanDuration(t *testing.T) {
	cases := map[time.Duration]string{
		30 * time.Second:                "1m",
		90 * time.Minute:                "1h 30m",
		7*24*time.Hour - time.Minute:    "6d 23h",
		2*24*time.Hour + 30*time.Second: "2d",
		7 * 24 * time.Hour:              "7d",
		2 * time.Hour:                   "2h",
	}
	for d, want := range cases {
		if got := humanDuration(d); got != want {
			t.Fatalf("%v: expected %q, got %q", d, want, got)
		}
	}
}

func newTestHandler(t *testing.T, bankSize, perApplication int) (*Handler, *fakeClient, *memory.SessionStore) {
	t.Helper()
	questions := make([]domain.Question, 0, bankSize)
	for i := 0; i < bankSize; i++ {
		questions = append(questions, domain.Question{
			Text:          fmt.Sprintf("Question %d?", i),
			Answers:       []string{"yes", "no"},
			CorrectAnswer: i % 2,
		})
	}
	bank, err := app.NewQuestionBank(questions, perApplication)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}

	client := &fakeClient{}
	sessions := memory.NewSessionStore()
	service := app.NewFanService(bank, sessions, memory.NewCooldownStore(), NewRoleGranter(client, testGuild), app.Settings{
		QuestionsPerApplication: perApplication,
		TimeLimit:               5 * time.Minute,
		RewardRoleID:            testRole,
	})

	h := NewHandler(client, service, Options{
		GuildID:      testGuild,
		SetupCommand: "setupfanapplicationchannel",
		RewardRoleID: testRole,
		Messages:     config.DefaultMessages(),
	}, zerolog.Nop())
	return h, client, sessions
}

func commandInteraction(name string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "interaction-cmd",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   testGuild,
		ChannelID: "channel-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "admin"}},
		Data:      discordgo.ApplicationCommandInteractionData{Name: name},
	}
}

func componentInteraction(customID, userID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "interaction-" + customID,
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuild,
		ChannelID: "channel-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}
}

func buttonIDs(t *testing.T, components []discordgo.MessageComponent) []string {
	t.Helper()
	var ids []string
	for _, c := range components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("expected actions row, got %T", c)
		}
		for _, inner := range row.Components {
			button, ok := inner.(discordgo.Button)
			if !ok {
				t.Fatalf("expected button, got %T", inner)
			}
			ids = append(ids, button.CustomID)
		}
	}
	return ids
}

type fakeClient struct {
	mu         sync.Mutex
	responses  []*discordgo.InteractionResponse
	sent       []*discordgo.MessageSend
	roleAdds   []string
	commands   []*discordgo.ApplicationCommand
	respondErr error
}

func (f *fakeClient) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeClient) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeClient) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleAdds = append(f.roleAdds, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeClient) ApplicationCommandBulkOverwrite(_ string, _ string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = commands
	return commands, nil
}

func (f *fakeClient) last(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		t.Fatalf("expected a response")
	}
	return f.responses[len(f.responses)-1]
}
