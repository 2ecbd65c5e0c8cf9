// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package i18n localizes the short messages returned to API clients.
package i18n

import (
	"context"
	"embed"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

// Supported lists the languages with a translation file, default first.
var Supported = []language.Tag{language.English, language.German}

var (
	bundle   *i18n.Bundle
	initOnce sync.Once
	initErr  error
	matcher  = language.NewMatcher(Supported)
)

type localizerContextKey struct{}

// Init loads the embedded translation files. It is safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

		for _, tag := range Supported {
			if _, err := b.LoadMessageFileFS(translationFS, "translations/active."+tag.String()+".toml"); err != nil {
				initErr = err
				return
			}
		}
		bundle = b
	})
	return initErr
}

// MatchLanguage picks the best supported language for an Accept-Language header.
func MatchLanguage(acceptLanguage string) language.Tag {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	return language.Make(base.String())
}

// WithLocale stores a localizer for lang in ctx.
func WithLocale(ctx context.Context, lang language.Tag) context.Context {
	_ = Init()
	return context.WithValue(ctx, localizerContextKey{}, localizer{
		Localizer: i18n.NewLocalizer(bundle, lang.String()),
		locale:    lang.String(),
	})
}

// GetLocale returns the locale stored in ctx, defaulting to English.
func GetLocale(ctx context.Context) string {
	if l, ok := ctx.Value(localizerContextKey{}).(localizer); ok {
		return l.locale
	}
	return "en"
}

// T translates a message by ID. Unknown IDs are returned unchanged.
func T(ctx context.Context, messageID string) string {
	return TData(ctx, messageID, nil)
}

// TData translates a message and fills in its template fields.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	if Init() != nil {
		return messageID
	}
	msg, err := getLocalizer(ctx).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

type localizer struct {
	*i18n.Localizer
	locale string
}

func getLocalizer(ctx context.Context) *i18n.Localizer {
	if l, ok := ctx.Value(localizerContextKey{}).(localizer); ok {
		return l.Localizer
	}
	return i18n.NewLocalizer(bundle, "en")
}
