package domain

import "strings"

// Tone is the stylistic directive applied to a generated email.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneWarm         Tone = "warm"
	ToneConcise      Tone = "concise"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	TonePersuasive   Tone = "persuasive"
)

// DefaultTone is used when a draft does not name one.
const DefaultTone = ToneProfessional

// ToneOption describes a tone for the form's selector.
type ToneOption struct {
	Value       Tone   `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var toneOptions = []ToneOption{
	{Value: ToneProfessional, Label: "Professional", Description: "Clear and business-appropriate"},
	{Value: ToneWarm, Label: "Warm", Description: "Friendly and approachable"},
	{Value: ToneConcise, Label: "Concise", Description: "Brief and to the point"},
	{Value: ToneFormal, Label: "Formal", Description: "Traditional and respectful"},
	{Value: ToneCasual, Label: "Casual", Description: "Relaxed and conversational"},
	{Value: TonePersuasive, Label: "Persuasive", Description: "Compelling and convincing"},
}

// Tones returns the selectable tones in display order.
func Tones() []ToneOption {
	out := make([]ToneOption, len(toneOptions))
	copy(out, toneOptions)
	return out
}

// ParseTone maps user input onto a known tone. Empty input yields DefaultTone.
func ParseTone(raw string) (Tone, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultTone, true
	}
	for _, opt := range toneOptions {
		if string(opt.Value) == raw {
			return opt.Value, true
		}
	}
	return "", false
}

// Draft is the user's request for one generated email.
type Draft struct {
	Thoughts string `json:"thoughts"`
	Tone     Tone   `json:"tone"`
	Context  string `json:"context,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// HasContext reports whether the draft carries a non-blank context email.
func (d Draft) HasContext() bool {
	return strings.TrimSpace(d.Context) != ""
}

// Outcome is the result of one generation: either Email or Err is set.
type Outcome struct {
	Email string
	Err   error
}

// Failed reports whether the outcome carries an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message is the text shown in place of the generated email.
func (o Outcome) Message() string {
	if o.Err == nil {
		return o.Email
	}
	return "Sorry, there was an error generating your email. Please try again. Error: " + o.Err.Error()
}
