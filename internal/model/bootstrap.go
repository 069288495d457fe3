package model

// ScriptTheme identifies the theme and template a page was rendered with.
type ScriptTheme struct {
	Name            string `json:"name"`
	Stylesheet      string `json:"stylesheet"`
	CurrentTemplate string `json:"current_template"`
}

// ScriptUser is the current visitor as seen by the widget.
type ScriptUser struct {
	LoggedIn bool   `json:"logged_in"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// ScriptData is everything the browser widget needs to start.
type ScriptData struct {
	AjaxURL   string         `json:"ajax_url"`
	Theme     ScriptTheme    `json:"theme"`
	User      ScriptUser     `json:"user"`
	Language  string         `json:"language"`
	Templates map[string]any `json:"templates"`
}
