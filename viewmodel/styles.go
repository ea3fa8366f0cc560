package viewmodel

// Style is the theme-independent look of a category. Tone names a palette
// slot; the theme package resolves it to a color.
type Style struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// StyleProvider resolves the style of a category of an entity.
type StyleProvider interface {
	CategoryStyle(entity, category string) Style
}

var categoryStyles = map[string]map[string]Style{
	"plans": {
		"date":        {"💑", "Date", "rose"},
		"trip":        {"✈️", "Trip", "sky"},
		"activity":    {"🎯", "Activity", "mint"},
		"celebration": {"🎉", "Celebration", "sun"},
		"other":       {"✨", "Other", "sand"},
	},
	"bucketList": {
		"adventure": {"🏔️", "Adventure", "mint"},
		"travel":    {"🌍", "Travel", "sky"},
		"food":      {"🍜", "Food", "sun"},
		"milestone": {"🏆", "Milestone", "rose"},
		"other":     {"⭐", "Other", "sand"},
	},
	"dreams": {
		"travel":     {"✈️", "Travel", "sky"},
		"home":       {"🏡", "Home", "sun"},
		"pets":       {"🐾", "Pets", "mint"},
		"activities": {"🎨", "Activities", "lilac"},
		"other":      {"💭", "Other", "sand"},
	},
	"milestones": {
		"first-date":     {"💕", "First Date", "rose"},
		"anniversary":    {"💍", "Anniversary", "lilac"},
		"special-moment": {"✨", "Special Moment", "sun"},
		"trip":           {"🗺️", "Trip", "sky"},
		"celebration":    {"🎉", "Celebration", "mint"},
	},
	"cinema": {
		"other": {"🎬", "Movie", "lilac"},
	},
}

// fallbackCategory is used for categories missing from the table.
var fallbackCategory = map[string]string{
	"milestones": "special-moment",
}

// CategoryStyle returns the style for category, falling back to the
// entity's default style for unknown categories.
func CategoryStyle(entity, category string) Style {
	table := categoryStyles[entity]
	if s, ok := table[category]; ok {
		return s
	}
	fb, ok := fallbackCategory[entity]
	if !ok {
		fb = "other"
	}
	if s, ok := table[fb]; ok {
		return s
	}
	return Style{Emoji: "•", Label: category, Tone: "sand"}
}

// Styles is the default StyleProvider.
type Styles struct{}

func (Styles) CategoryStyle(entity, category string) Style {
	return CategoryStyle(entity, category)
}
