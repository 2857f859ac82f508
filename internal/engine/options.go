package engine

import (
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/dshills/textspan/internal/config"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithLanguage selects the syntax by language name, e.g. "go".
func WithLanguage(name string) Option {
	return func(e *Engine) {
		e.language = name
	}
}

// WithCaseLanguage sets the language whose casing rules ChangeCase
// follows. The default is language.Und.
func WithCaseLanguage(tag language.Tag) Option {
	return func(e *Engine) {
		e.caseLang = tag
	}
}

// WithFilename selects the syntax by file name when no language is set.
func WithFilename(name string) Option {
	return func(e *Engine) {
		e.filename = name
	}
}

// WithMaxScanChars sets the bracket matcher's step budget. A negative
// value means unbounded.
func WithMaxScanChars(n int) Option {
	return func(e *Engine) {
		e.maxScanChars = n
	}
}

// WithContextClasses sets the context classes bracket matching respects.
func WithContextClasses(classes ...string) Option {
	return func(e *Engine) {
		e.contextClasses = append([]string(nil), classes...)
	}
}

// WithHighlightBrackets turns bracket matching on or off.
func WithHighlightBrackets(on bool) Option {
	return func(e *Engine) {
		e.highlightBrackets = on
	}
}

// WithHighlightSyntax turns syntax analysis on or off.
func WithHighlightSyntax(on bool) Option {
	return func(e *Engine) {
		e.highlightSyntax = on
	}
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithConfig applies the bracket and highlight sections of cfg. Options
// after it override individual settings.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.maxScanChars = cfg.Bracket.MaxScanChars
		e.contextClasses = append([]string(nil), cfg.Bracket.ContextClasses...)
		e.highlightBrackets = cfg.Bracket.Highlight
		e.highlightSyntax = cfg.Highlight.Enabled
		if cfg.Highlight.Language != "" {
			e.language = cfg.Highlight.Language
		}
	}
}
