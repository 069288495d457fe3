package bootstrap

// uiCopy returns the static strings shown by the widget. A new map is built
// on every call so filters may mutate the result freely.
func uiCopy() map[string]any {
	closeAria := "Close"
	return map[string]any{
		"button": map[string]any{
			"label": "Feedback",
		},
		"bottombar": map[string]any{
			"step": map[string]any{
				"one":   "Feedback",
				"two":   "Highlight area",
				"three": "Leave a message",
			},
			"button": map[string]any{
				"help":     "?",
				"helpAria": "Submit Feedback",
			},
		},
		"wizardStep1": map[string]any{
			"title":      "Feedback",
			"salutation": "Howdy stranger,",
			"intro":      "Please let us know who you are. This way we will get back to you as soon as the issue is resolved:",
			"placeholder": map[string]any{
				"name":  "Your name",
				"email": "Email address",
			},
			"button": map[string]any{
				"primary":   "Next",
				"secondary": "Stay anonymous",
				"close":     "&times;",
				"closeAria": closeAria,
			},
		},
		"wizardStep2": map[string]any{
			"title":      "Feedback",
			"salutation": "Hello ",
			"intro":      "Please help us understand your feedback better!",
			"intro2":     "You can not only leave us a message but also highlight areas relevant to your feedback.",
			"inputLabel": "Don't show me this again",
			"button": map[string]any{
				"primary":   "Next",
				"close":     "&times;",
				"closeAria": closeAria,
			},
		},
		"wizardStep3": map[string]any{
			"title": "Highlight area",
			"intro": "Highlight the areas relevant to your feedback.",
			"button": map[string]any{
				"primary":   "Take screenshot",
				"close":     "&times;",
				"closeAria": closeAria,
			},
		},
		"wizardStep3Annotation": map[string]any{
			"close":     "&times;",
			"closeAria": closeAria,
		},
		"wizardStep4": map[string]any{
			"title":         "Feedback",
			"screenshotAlt": "Annotated Screenshot",
			"user": map[string]any{
				"by":          "From ",
				"gravatarAlt": "Gravatar",
			},
			"placeholder": map[string]any{
				"message": "Tell us what we should improve or fix &hellip;",
			},
			"details": map[string]any{
				"theme":    "Theme: ",
				"template": "Page: ",
				"browser":  "Browser: ",
				"language": "Language: ",
			},
			"button": map[string]any{
				"primary":   "Send",
				"secondary": "Back",
				"close":     "&times;",
				"closeAria": closeAria,
			},
		},
		"wizardStep5": map[string]any{
			"title":  "Feedback",
			"intro":  "Thank you for taking your time to give us feedback. We will examine it and get back to as quickly as possible.",
			"intro2": "&ndash; Your support team",
			"button": map[string]any{
				"primary":   "Done",
				"secondary": "Leave another message",
			},
		},
	}
}
