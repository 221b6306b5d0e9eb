package i18n

import (
	"testing"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizerEnglish(t *testing.T) {
	l := MustDefault()

	assert.Equal(t, "Please say something.", l.T(MsgEmptyMessage, nil))
	assert.Contains(t, l.T(MsgFallbackRateLimited, map[string]interface{}{"Number": "112"}), "112")
	assert.Contains(t, l.T(MsgLocationSaved, map[string]interface{}{"Location": "Pune"}), "Pune")
}

func TestLocalizerHindiAndFallback(t *testing.T) {
	l, err := NewLocalizer(&config.I18nConfig{DefaultLanguage: "en", Languages: []string{"en", "hi"}})
	require.NoError(t, err)

	assert.Equal(t, "कृपया कुछ लिखें।", l.Get("hi", MsgEmptyMessage, nil))
	assert.Equal(t, "Please say something.", l.Get("fr", MsgEmptyMessage, nil))
	assert.Equal(t, "no_such_message", l.T("no_such_message", nil))
}

func TestNewLocalizerErrors(t *testing.T) {
	_, err := NewLocalizer(&config.I18nConfig{DefaultLanguage: "en", Languages: []string{"xx"}})
	assert.Error(t, err)

	_, err = NewLocalizer(&config.I18nConfig{DefaultLanguage: "hi", Languages: []string{"en"}})
	assert.Error(t, err)
}

func TestMatchAcceptLanguage(t *testing.T) {
	l, err := NewLocalizer(&config.I18nConfig{DefaultLanguage: "en", Languages: []string{"en", "hi"}})
	require.NoError(t, err)

	assert.Equal(t, "hi", l.Match("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", l.Match("en-GB"))
	assert.Equal(t, "en", l.Match("fr-FR"))
	assert.Equal(t, "en", l.Match(""))
	assert.Equal(t, "en", l.Match(";;;"))
}
