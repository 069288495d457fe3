// Package bootstrap assembles the data object handed to the browser widget.
//
// Everything the widget needs about the current request (user, theme,
// locale) is passed in explicitly through a RequestContext.
package bootstrap

import (
	"path"
	"strings"

	"github.com/afrigis/user-feedback/internal/hooks"
	"github.com/afrigis/user-feedback/internal/model"
)

const anonymousName = "Anonymous"

// Config carries site-wide defaults.
type Config struct {
	AjaxURL        string
	LoadOnFrontend bool
	LoadOnBackend  bool
}

// RequestUser is the authenticated user, if any.
type RequestUser struct {
	LoggedIn bool
	Name     string
	Email    string
}

// RequestContext describes the page request the widget is loaded into.
type RequestContext struct {
	Theme        model.Theme
	User         RequestUser
	SiteLanguage string
	// LanguageOverrides are consulted in order after SiteLanguage; the last
	// non-empty entry wins.
	LanguageOverrides []string
	// Admin is true when the widget is loaded into the admin area.
	Admin bool
}

// Builder produces ScriptData.
type Builder struct {
	cfg   Config
	hooks *hooks.Registry
}

// NewBuilder creates a Builder. reg may be nil.
func NewBuilder(cfg Config, reg *hooks.Registry) *Builder {
	if reg == nil {
		reg = hooks.NewRegistry()
	}
	return &Builder{cfg: cfg, hooks: reg}
}

// Enabled reports whether the widget should load for rc.
func (b *Builder) Enabled(rc RequestContext) bool {
	if rc.Admin {
		if !b.hooks.Bools.Apply(hooks.LoadOnBackend, b.cfg.LoadOnBackend) {
			return false
		}
	} else if !b.hooks.Bools.Apply(hooks.LoadOnFrontend, b.cfg.LoadOnFrontend) {
		return false
	}
	return b.hooks.Bools.Apply(hooks.Load, true)
}

// Build returns the widget data for rc, or false when the widget is disabled.
func (b *Builder) Build(rc RequestContext) (model.ScriptData, bool) {
	if !b.Enabled(rc) {
		return model.ScriptData{}, false
	}

	user := model.ScriptUser{LoggedIn: rc.User.LoggedIn, Name: rc.User.Name, Email: rc.User.Email}
	if !rc.User.LoggedIn {
		user = model.ScriptUser{Name: anonymousName}
	}

	data := model.ScriptData{
		AjaxURL: b.cfg.AjaxURL,
		Theme: model.ScriptTheme{
			Name:            rc.Theme.Name,
			Stylesheet:      rc.Theme.Stylesheet,
			CurrentTemplate: currentTemplate(rc.Theme.Template),
		},
		User:      user,
		Language:  ResolveLanguage(rc.SiteLanguage, rc.LanguageOverrides...),
		Templates: uiCopy(),
	}
	return b.hooks.Script.Apply(hooks.ScriptData, data), true
}

// ResolveLanguage returns the last non-empty override, falling back to site.
func ResolveLanguage(site string, overrides ...string) string {
	lang := strings.TrimSpace(site)
	for _, o := range overrides {
		if o = strings.TrimSpace(o); o != "" {
			lang = o
		}
	}
	return lang
}

func currentTemplate(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}
