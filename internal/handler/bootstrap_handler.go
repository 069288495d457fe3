package handler

import (
	"encoding/json"
	"net/http"

	"github.com/afrigis/user-feedback/internal/bootstrap"
	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/pkg/auth"
)

// languageCookie is set by the site's translation layer when a visitor
// picks a language.
const languageCookie = "site_language"

// BootstrapConfig holds site defaults for the widget bootstrap.
type BootstrapConfig struct {
	Theme        model.Theme
	SiteLanguage string
}

// BootstrapHandler serves the data object the widget starts from.
type BootstrapHandler struct {
	builder *bootstrap.Builder
	cfg     BootstrapConfig
}

// NewBootstrapHandler creates a BootstrapHandler.
func NewBootstrapHandler(builder *bootstrap.Builder, cfg BootstrapConfig) *BootstrapHandler {
	return &BootstrapHandler{builder: builder, cfg: cfg}
}

// Get handles GET /api/feedback/bootstrap?context=public|admin.
// Optional query params: template (page template path), lang.
func (h *BootstrapHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	theme := h.cfg.Theme
	if t := q.Get("template"); t != "" {
		theme.Template = t
	}

	rc := bootstrap.RequestContext{
		Theme:        theme,
		SiteLanguage: h.cfg.SiteLanguage,
		Admin:        q.Get("context") == "admin",
	}
	var cookieLang string
	if c, err := r.Cookie(languageCookie); err == nil {
		cookieLang = c.Value
	}
	// An explicit ?lang= beats a remembered cookie.
	rc.LanguageOverrides = []string{cookieLang, q.Get("lang")}

	if u, ok := auth.UserFromContext(r.Context()); ok {
		rc.User = bootstrap.RequestUser{LoggedIn: true, Name: u.Name, Email: u.Email}
	}

	data, ok := h.builder.Build(rc)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "private, no-store")
	_ = json.NewEncoder(w).Encode(data)
}
