package model

import (
	"encoding/json"
	"time"
)

// Browser describes the visitor's browser at submission time.
type Browser struct {
	Name      string `json:"name"`
	UserAgent string `json:"userAgent"`
	Online    bool   `json:"online"`
}

// Submitter is the visitor-supplied identity. Both fields may be empty.
type Submitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Theme carries the site theme the page was rendered with.
type Theme struct {
	Name       string `json:"name"`
	Stylesheet string `json:"stylesheet"`
	Template   string `json:"template"`
}

// FeedbackSubmission is one visitor-originated bundle of page context, note
// and annotated screenshot. It lives only for the duration of a request.
type FeedbackSubmission struct {
	ID       string    `json:"-"`
	Browser  Browser   `json:"browser"`
	URL      string    `json:"url"`
	HTML     string    `json:"html,omitempty"`
	Image    string    `json:"image,omitempty"` // data:image/png;base64,<payload>
	Message  string    `json:"message"`
	User     Submitter `json:"user"`
	Language string    `json:"language"`
	Theme    Theme     `json:"theme"`
}

// UnmarshalJSON accepts the legacy "img" key as an alias for "image".
func (s *FeedbackSubmission) UnmarshalJSON(b []byte) error {
	type plain FeedbackSubmission
	aux := struct {
		*plain
		Img string `json:"img"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if s.Image == "" && aux.Img != "" {
		s.Image = aux.Img
	}
	return nil
}

// StoredImage is the decoded screenshot written by the media store.
type StoredImage struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
