// Package content serves the site's static reference data: external links,
// social accounts, interests by category, and the hardware/software
// workspace listing. Everything is embedded at build time, decoded once,
// and read-only from then on; all filtering and sorting is done on copies.
package content

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

//go:embed data/*.json
var dataFS embed.FS

// Link is one entry on the links page.
type Link struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SocialAccount is one entry in the socials directory. Platform values map
// onto the socials package's platform enum; content keeps them as strings
// so the data layer stays decoupled from the fetch layer.
type SocialAccount struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Platform string `json:"platform"`
	Icon     string `json:"icon"`
}

// Kind selects one interests category.
type Kind string

const (
	KindGames Kind = "games"
	KindMusic Kind = "music"
	KindShows Kind = "shows"
)

// Kinds lists the interest categories in presentation order.
func Kinds() []Kind { return []Kind{KindGames, KindMusic, KindShows} }

// IsValid checks if the kind is one of the known categories.
func (k Kind) IsValid() bool {
	switch k {
	case KindGames, KindMusic, KindShows:
		return true
	default:
		return false
	}
}

// Interest is one entry in an interests category.
type Interest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Category    string   `json:"category"`
	Year        int      `json:"year"`
	Creator     string   `json:"creator"`
	Platform    string   `json:"platform"`
	Tags        []string `json:"tags"`
	Metacritic  *int     `json:"metacritic_score,omitempty"`
	Playtime    string   `json:"playtime,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// Hardware is one machine in the workspace listing.
type Hardware struct {
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	OperatingSystem string    `json:"operating_system"`
	URL             string    `json:"url,omitempty"`
	CPU             CPU       `json:"cpu"`
	GPU             GPU       `json:"gpu"`
	RAM             RAM       `json:"ram"`
	Storage         []Storage `json:"storage"`
}

type CPU struct {
	Model            string `json:"model"`
	Architecture     string `json:"architecture,omitempty"`
	Cores            int    `json:"cores,omitempty"`
	Threads          int    `json:"threads,omitempty"`
	PerformanceCores int    `json:"performance_cores,omitempty"`
	EfficiencyCores  int    `json:"efficiency_cores,omitempty"`
	TotalCores       int    `json:"total_cores,omitempty"`
	NeuralEngine     string `json:"neural_engine,omitempty"`
	BaseClock        string `json:"base_clock,omitempty"`
	BoostClock       string `json:"boost_clock,omitempty"`
}

type GPU struct {
	Model string `json:"model"`
	Type  string `json:"type"`
	Cores int    `json:"cores,omitempty"`
	VRAM  string `json:"vram,omitempty"`
}

type RAM struct {
	Capacity string `json:"capacity"`
	Type     string `json:"type"`
}

type Storage struct {
	Capacity string `json:"capacity"`
	Type     string `json:"type"`
}

// Software is one tool in the workspace listing.
type Software struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Developer   string   `json:"developer"`
	License     string   `json:"license"`
	Platforms   []string `json:"platforms"`
	Features    []string `json:"features"`
}

// Catalog is the decoded reference data.
type Catalog struct {
	links     []Link
	socials   []SocialAccount
	interests map[Kind][]Interest
	hardware  []Hardware
	software  []Software
}

// Load decodes the embedded data files. Links come back pre-sorted
// case-insensitively by name; socials by platform, then name.
func Load() (*Catalog, error) {
	c := &Catalog{interests: make(map[Kind][]Interest)}

	if err := decode("data/links.json", &c.links); err != nil {
		return nil, err
	}
	if err := decode("data/socials.json", &c.socials); err != nil {
		return nil, err
	}
	for _, k := range Kinds() {
		var items []Interest
		if err := decode(fmt.Sprintf("data/%s.json", k), &items); err != nil {
			return nil, err
		}
		c.interests[k] = items
	}
	if err := decode("data/hardware.json", &c.hardware); err != nil {
		return nil, err
	}
	if err := decode("data/software.json", &c.software); err != nil {
		return nil, err
	}

	sort.SliceStable(c.links, func(i, j int) bool {
		return strings.ToLower(c.links[i].Name) < strings.ToLower(c.links[j].Name)
	})
	sort.SliceStable(c.socials, func(i, j int) bool {
		if c.socials[i].Platform != c.socials[j].Platform {
			return c.socials[i].Platform < c.socials[j].Platform
		}
		return c.socials[i].Name < c.socials[j].Name
	})
	return c, nil
}

func decode(name string, out any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Links returns the sorted links list.
func (c *Catalog) Links() []Link { return append([]Link(nil), c.links...) }

// Socials returns the sorted social-account directory.
func (c *Catalog) Socials() []SocialAccount {
	return append([]SocialAccount(nil), c.socials...)
}

// SocialByPlatform returns the directory entry for a platform, if any.
func (c *Catalog) SocialByPlatform(platform string) (SocialAccount, bool) {
	for _, s := range c.socials {
		if s.Platform == platform {
			return s, true
		}
	}
	return SocialAccount{}, false
}

// Interests returns the entries for one category.
func (c *Catalog) Interests(k Kind) []Interest {
	return append([]Interest(nil), c.interests[k]...)
}

// Hardware returns the workspace machines.
func (c *Catalog) Hardware() []Hardware {
	return append([]Hardware(nil), c.hardware...)
}

// Software returns the workspace tools.
func (c *Catalog) Software() []Software {
	return append([]Software(nil), c.software...)
}
