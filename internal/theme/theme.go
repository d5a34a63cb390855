// Package theme manages the site-wide color theme: a closed set of named
// themes, the marker classes the frontend applies, and a persisted current
// selection.
package theme

// Theme is one of the named site themes.
type Theme string

const (
	Default             Theme = "default"
	Dark                Theme = "dark"
	Light               Theme = "light"
	CatppuccinLatte     Theme = "catppuccin-latte"
	CatppuccinFrappe    Theme = "catppuccin-frappe"
	CatppuccinMacchiato Theme = "catppuccin-macchiato"
	RosePine            Theme = "rose-pine"
	RosePineMoon        Theme = "rose-pine-moon"
	RosePineDawn        Theme = "rose-pine-dawn"
)

// All lists every theme in presentation order.
func All() []Theme {
	return []Theme{
		Default, Dark, Light,
		CatppuccinLatte, CatppuccinFrappe, CatppuccinMacchiato,
		RosePine, RosePineMoon, RosePineDawn,
	}
}

// IsValid checks if the theme is part of the closed set.
func (t Theme) IsValid() bool {
	for _, known := range All() {
		if t == known {
			return true
		}
	}
	return false
}

func (t Theme) String() string { return string(t) }

// MarkerClass is the CSS class the frontend attaches to the document root
// while the theme is active.
func (t Theme) MarkerClass() string { return "theme-" + string(t) }

// AllMarkerClasses lists every theme's marker class, in All() order.
func AllMarkerClasses() []string {
	themes := All()
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = t.MarkerClass()
	}
	return out
}

// chromeColors are the browser-chrome hints (theme-color meta) per theme.
var chromeColors = map[Theme]string{
	Default:             "#0a0a0a",
	Dark:                "#0a0a0a",
	Light:               "#fafafa",
	CatppuccinLatte:     "#eff1f5",
	CatppuccinFrappe:    "#303446",
	CatppuccinMacchiato: "#24273a",
	RosePine:            "#191724",
	RosePineMoon:        "#232136",
	RosePineDawn:        "#faf4ed",
}

// ChromeColor returns the browser-chrome color hint for the theme, falling
// back to the default theme's hint for unknown values.
func (t Theme) ChromeColor() string {
	if c, ok := chromeColors[t]; ok {
		return c
	}
	return chromeColors[Default]
}
