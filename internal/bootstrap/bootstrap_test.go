package bootstrap

import (
	"testing"

	"github.com/afrigis/user-feedback/internal/hooks"
	"github.com/afrigis/user-feedback/internal/model"
)

func defaultConfig() Config {
	return Config{AjaxURL: "https://example.com/api/feedback", LoadOnFrontend: true}
}

func TestBuild_AnonymousVisitor(t *testing.T) {
	b := NewBuilder(defaultConfig(), nil)

	data, ok := b.Build(RequestContext{
		Theme:        model.Theme{Name: "Twenty", Stylesheet: "twenty", Template: "/srv/themes/twenty/page.php"},
		SiteLanguage: "en-US",
	})
	if !ok {
		t.Fatal("expected widget to be enabled on public pages")
	}
	if data.AjaxURL != "https://example.com/api/feedback" {
		t.Errorf("ajax url: got %q", data.AjaxURL)
	}
	if data.User.LoggedIn || data.User.Name != "Anonymous" || data.User.Email != "" {
		t.Errorf("unexpected anonymous user %+v", data.User)
	}
	if data.Theme.CurrentTemplate != "page.php" {
		t.Errorf("current template: got %q", data.Theme.CurrentTemplate)
	}
	if data.Language != "en-US" {
		t.Errorf("language: got %q", data.Language)
	}
	if _, ok := data.Templates["wizardStep4"]; !ok {
		t.Error("expected UI copy for every wizard step")
	}
}

func TestBuild_LoggedInUser(t *testing.T) {
	b := NewBuilder(defaultConfig(), nil)

	data, _ := b.Build(RequestContext{User: RequestUser{LoggedIn: true, Name: "Ada", Email: "ada@example.com"}})
	if !data.User.LoggedIn || data.User.Name != "Ada" || data.User.Email != "ada@example.com" {
		t.Errorf("unexpected user %+v", data.User)
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		site      string
		overrides []string
		want      string
	}{
		{"en-US", nil, "en-US"},
		{"en-US", []string{"de"}, "de"},
		{"en-US", []string{"de", "fr"}, "fr"},
		{"en-US", []string{"de", ""}, "de"},
		{"", []string{" "}, ""},
	}
	for _, tt := range tests {
		if got := ResolveLanguage(tt.site, tt.overrides...); got != tt.want {
			t.Errorf("ResolveLanguage(%q, %v) = %q, want %q", tt.site, tt.overrides, got, tt.want)
		}
	}
}

func TestEnabled_Defaults(t *testing.T) {
	b := NewBuilder(defaultConfig(), nil)
	if !b.Enabled(RequestContext{}) {
		t.Error("expected enabled on public pages by default")
	}
	if b.Enabled(RequestContext{Admin: true}) {
		t.Error("expected disabled on admin pages by default")
	}
}

func TestEnabled_Filters(t *testing.T) {
	reg := hooks.NewRegistry()
	reg.Bools.Add(hooks.LoadOnBackend, hooks.Const(true))
	b := NewBuilder(defaultConfig(), reg)
	if !b.Enabled(RequestContext{Admin: true}) {
		t.Error("load_on_backend filter should enable admin pages")
	}

	reg.Bools.Add(hooks.Load, hooks.Const(false))
	if _, ok := b.Build(RequestContext{}); ok {
		t.Error("load filter should disable the widget everywhere")
	}
}

func TestBuild_ScriptDataFilter(t *testing.T) {
	reg := hooks.NewRegistry()
	reg.Script.Add(hooks.ScriptData, func(d model.ScriptData) model.ScriptData {
		d.AjaxURL = "https://cdn.example.com/feedback"
		return d
	})
	b := NewBuilder(defaultConfig(), reg)

	data, _ := b.Build(RequestContext{})
	if data.AjaxURL != "https://cdn.example.com/feedback" {
		t.Errorf("expected filtered ajax url, got %q", data.AjaxURL)
	}
}

func TestUICopy_FreshMapEachCall(t *testing.T) {
	a := uiCopy()
	a["button"] = "changed"
	b := uiCopy()
	if _, ok := b["button"].(map[string]any); !ok {
		t.Error("mutating one copy must not affect the next")
	}
}
