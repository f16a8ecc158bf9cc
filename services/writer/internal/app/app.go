package app

import (
	"context"
	"fmt"
	"strings"

	"mailcraft/internal/util"
	"mailcraft/pkg/ai"
	"mailcraft/pkg/domain"
)

// Config holds runtime configuration for the core application.
type Config struct {
	Gemini           *ai.GeminiClient
	DefaultLocale    string
	SupportedLocales []string
}

// App turns drafts into generated emails.
type App struct {
	gemini  *ai.GeminiClient
	locales localeResolver
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	return &App{
		gemini:  cfg.Gemini,
		locales: newLocaleResolver(cfg.SupportedLocales, cfg.DefaultLocale),
	}, nil
}

// Prepare validates a draft and fills in its tone and locale.
// Blank thoughts yield ErrEmptyThoughts.
func (a *App) Prepare(draft domain.Draft) (domain.Draft, error) {
	if strings.TrimSpace(draft.Thoughts) == "" {
		return domain.Draft{}, ErrEmptyThoughts
	}
	tone, ok := domain.ParseTone(string(draft.Tone))
	if !ok {
		return domain.Draft{}, fmt.Errorf("%w: %q", ErrUnknownTone, draft.Tone)
	}
	draft.Tone = tone
	draft.Locale = a.locales.resolve(draft.Locale)
	return draft, nil
}

// Compose generates one email for draft with a single model call.
// Only draft validation errors are returned as err; generation failures are
// carried in the Outcome.
func (a *App) Compose(ctx context.Context, draft domain.Draft) (domain.Outcome, error) {
	draft, err := a.Prepare(draft)
	if err != nil {
		return domain.Outcome{}, err
	}
	logger := util.LoggerFromContext(ctx)
	prompt := BuildPrompt(draft)
	logger.Debug("sending prompt to gemini", "model", a.gemini.Model(), "tone", draft.Tone, "locale", draft.Locale, "prompt", prompt)

	text, err := a.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Error("generate email failed", "kind", ErrorKind(err), "err", err)
		return domain.Outcome{Err: err}, nil
	}
	return domain.Outcome{Email: text}, nil
}

// Tones lists the selectable tones.
func (a *App) Tones() []domain.ToneOption {
	return domain.Tones()
}
