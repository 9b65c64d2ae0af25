package config

import (
	"strings"
)

// Messages are the user-facing texts. Placeholders in braces are filled by Render.
type Messages struct {
	Entry          string `yaml:"entry"`
	StartButton    string `yaml:"start_button"`
	SetupDone      string `yaml:"setup_done"`
	QuestionHeader string `yaml:"question_header"`
	Replaced       string `yaml:"replaced"`
	WrongAnswer    string `yaml:"wrong_answer"`
	TimeExpired    string `yaml:"time_expired"`
	RoleGranted    string `yaml:"role_granted"`
	NoApplication  string `yaml:"no_application"`
	StaleButton    string `yaml:"stale_button"`
	CoolingDown    string `yaml:"cooling_down"`
}

func (m Messages) withDefaults() Messages {
	def := func(v *string, fallback string) {
		if *v == "" {
			*v = fallback
		}
	}
	def(&m.Entry, "Want to become a trusted member of the community, unlock the channels for true fans and get the {role} role? Press the button below.\n"+
		"You will be asked {questions} simple questions and need to answer all of them correctly within {minutes} minutes.")
	def(&m.StartButton, "✅ Become a fan")
	def(&m.SetupDone, "Fan application message posted.")
	def(&m.QuestionHeader, "Question {number}/{total}")
	def(&m.Replaced, "Your previous application was discarded.")
	def(&m.WrongAnswer, "Wrong answer! Watch more videos and try again later.")
	def(&m.TimeExpired, "All correct, but the {minutes} minutes are over. Try again later!")
	def(&m.RoleGranted, "Role granted!")
	def(&m.NoApplication, "You have no active application. Press the button on the application message to start one.")
	def(&m.StaleButton, "That button belongs to an earlier question.")
	def(&m.CoolingDown, "You can apply again in {retry}.")
	return m
}

// Render replaces {key} placeholders with values.
func Render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// DefaultMessages returns the built-in texts.
func DefaultMessages() Messages {
	return Messages{}.withDefaults()
}
