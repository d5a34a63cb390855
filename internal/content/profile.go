package content

// Profile is the static profile-card content.
type Profile struct {
	Name     string   `json:"name"`
	Handle   string   `json:"handle"`
	Tagline  string   `json:"tagline"`
	Bio      string   `json:"bio"`
	Location string   `json:"location"`
	Focus    []string `json:"focus"`
}

var bio = `I spend most of my time wiring small services together on a shelf in
my closet and pretending that counts as a hobby. Most projects here start as
an excuse to learn one new tool and end as something I actually depend on.
Away from the keyboard it's mostly records, long shows, and factory games
that eat entire weekends.`

// SiteProfile returns the profile card served on the landing page.
func SiteProfile() Profile {
	return Profile{
		Name:     "pdwk",
		Handle:   "@pdwk",
		Tagline:  "self-hosting things that did not need self-hosting",
		Bio:      bio,
		Location: "somewhere rainy",
		Focus:    []string{"homelab", "go", "music"},
	}
}
