package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// Localizer manages internationalization
type Localizer struct {
	bundle          *i18n.Bundle
	defaultLanguage string
	localizers      map[string]*i18n.Localizer
	supported       []string
	matcher         language.Matcher
}

// NewLocalizer creates a new localizer from the embedded message files
func NewLocalizer(cfg *config.I18nConfig) (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	for _, lang := range languages {
		if _, err := bundle.LoadMessageFileFS(locales, fmt.Sprintf("locales/%s.json", lang)); err != nil {
			return nil, fmt.Errorf("failed to load language file %s: %w", lang, err)
		}
	}

	localizers := make(map[string]*i18n.Localizer)
	for _, lang := range languages {
		localizers[lang] = i18n.NewLocalizer(bundle, lang)
	}

	defaultLanguage := cfg.DefaultLanguage
	if _, ok := localizers[defaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %q is not among the loaded languages", defaultLanguage)
	}

	// The matcher falls back to its first tag, so the default goes first
	supported := []string{defaultLanguage}
	tags := []language.Tag{language.Make(defaultLanguage)}
	for _, lang := range languages {
		if lang == defaultLanguage {
			continue
		}
		supported = append(supported, lang)
		tags = append(tags, language.Make(lang))
	}

	return &Localizer{
		bundle:          bundle,
		defaultLanguage: defaultLanguage,
		localizers:      localizers,
		supported:       supported,
		matcher:         language.NewMatcher(tags),
	}, nil
}

// Match returns the loaded language that best fits an Accept-Language header
func (l *Localizer) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return l.defaultLanguage
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return l.defaultLanguage
	}
	_, idx, confidence := l.matcher.Match(prefs...)
	if confidence == language.No {
		return l.defaultLanguage
	}
	return l.supported[idx]
}

// MustDefault returns an English-only localizer. It panics if the embedded
// message file is broken, which only a bad build can cause.
func MustDefault() *Localizer {
	l, err := NewLocalizer(&config.I18nConfig{DefaultLanguage: "en", Languages: []string{"en"}})
	if err != nil {
		panic(err)
	}
	return l
}

// Get returns localized message
func (l *Localizer) Get(lang, messageID string, data map[string]interface{}) string {
	localizer, exists := l.localizers[lang]
	if !exists {
		localizer = l.localizers[l.defaultLanguage]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID // Fallback to message ID
	}

	return msg
}

// T localizes messageID in the default language
func (l *Localizer) T(messageID string, data map[string]interface{}) string {
	return l.Get(l.defaultLanguage, messageID, data)
}

// DefaultLanguage returns the configured fallback language
func (l *Localizer) DefaultLanguage() string {
	return l.defaultLanguage
}

// Message IDs
const (
	MsgFallbackRateLimited = "fallback_rate_limited"
	MsgFallbackAPIError    = "fallback_api_error"
	MsgFallbackUnexpected  = "fallback_unexpected"
	MsgLocationUsage       = "location_usage"
	MsgLocationSaved       = "location_saved"
	MsgAlertLocationKnown  = "alert_location_known"
	MsgAlertLocationAbsent = "alert_location_unknown"
	MsgAlertSent           = "alert_sent"
	MsgCalmHeader          = "calm_header"
	MsgEmptyMessage        = "empty_message"
	MsgRateLimitExceeded   = "rate_limit_exceeded"
	MsgNotInitialized      = "not_initialized"
	MsgInternalError       = "internal_error"
	MsgBadRequest          = "bad_request"
	MsgMessageTooLong      = "message_too_long"
)
