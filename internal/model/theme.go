package model

// Theme names the event context a rating belongs to. The set is closed:
// ledger partitions are keyed by it.
type Theme string

const (
	ThemeHalloween Theme = "halloween"
	ThemeChristmas Theme = "christmas"
)

// DefaultTheme is assumed for legacy records and requests that carry no
// theme at all.
const DefaultTheme = ThemeHalloween

func Themes() []Theme {
	return []Theme{ThemeHalloween, ThemeChristmas}
}

func (t Theme) Valid() bool {
	switch t {
	case ThemeHalloween, ThemeChristmas:
		return true
	}
	return false
}

// ThemeConfig is the read-only presentation payload clients render rating
// forms from. The core never interprets it.
type ThemeConfig struct {
	Name               string         `json:"name"`
	Icon               string         `json:"icon"`
	Rating1Label       string         `json:"rating1_label"`
	Rating2Label       string         `json:"rating2_label"`
	Rating1Description map[int]string `json:"rating1_descriptions"`
	Rating2Description map[int]string `json:"rating2_descriptions"`
}

var themeConfigs = map[Theme]ThemeConfig{
	ThemeHalloween: {
		Name:         "Halloween",
		Icon:         "🎃",
		Rating1Label: "Candy Quality",
		Rating2Label: "Decorations",
		Rating1Description: map[int]string{
			1: "Not great",
			2: "Okay",
			3: "Good candy",
			4: "Great stuff!",
			5: "Full size bars!",
		},
		Rating2Description: map[int]string{
			1: "Minimal effort",
			2: "Some decorations",
			3: "Pretty festive",
			4: "Very spooky!",
			5: "Amazing setup!",
		},
	},
	ThemeChristmas: {
		Name:         "Christmas",
		Icon:         "🎄",
		Rating1Label: "Christmas Lights",
		Rating2Label: "Decorations",
		Rating1Description: map[int]string{
			1: "Barely lit",
			2: "Some lights",
			3: "Nice display",
			4: "Bright & beautiful",
			5: "Spectacular show!",
		},
		Rating2Description: map[int]string{
			1: "Minimal effort",
			2: "Some decorations",
			3: "Pretty festive",
			4: "Very merry!",
			5: "Amazing setup!",
		},
	},
}

func ConfigFor(t Theme) (ThemeConfig, bool) {
	cfg, ok := themeConfigs[t]
	return cfg, ok
}
