package category

import "strings"

// Category is the semantic bucket assigned to every application.
type Category string

const (
	Productive   Category = "Productive"
	Unproductive Category = "Unproductive"
	Game         Category = "Game"
	Study        Category = "Study"
	Neutral      Category = "Neutral"
)

// Hint is an optional category hint supplied by the app catalog.
type Hint string

const (
	HintNone Hint = ""
	HintGame Hint = "game"
)

// Keyword tables are fixed data, not runtime-extensible. Matching is
// case-insensitive substring matching against the app identifier, and
// table order below is the evaluation precedence: game, then study,
// then unproductive, then productive.
var (
	studyKeywords = []string{
		"zoom", "teams", "classroom", "duolingo", "khan", "coursera",
		"udemy", "linkedin", "docs", "sheets", "drive", "pdf", "wiki",
	}
	unproductiveKeywords = []string{
		"instagram", "facebook", "tiktok", "snapchat", "twitter", "x",
		"youtube", "netflix", "prime", "hotstar", "disney", "spotify",
		"twitch", "reddit",
	}
	productiveKeywords = []string{
		"clock", "settings", "dialer", "calendar", "calculator", "maps",
		"gmail", "whatsapp", "message", "contact", "bank", "pay",
	}
)

// Classify maps an application identifier and an optional catalog hint
// to a category. It is deterministic and total. The game rule runs
// first: a game hint wins regardless of keyword tables.
func Classify(appID string, hint Hint) Category {
	id := strings.ToLower(appID)

	if hint == HintGame || strings.Contains(id, "game") {
		return Game
	}
	if matchesAny(id, studyKeywords) {
		return Study
	}
	if matchesAny(id, unproductiveKeywords) {
		return Unproductive
	}
	if matchesAny(id, productiveKeywords) {
		return Productive
	}
	return Neutral
}

func matchesAny(id string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(id, kw) {
			return true
		}
	}
	return false
}
