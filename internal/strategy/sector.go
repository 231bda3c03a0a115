package strategy

import "strings"

// sectorRule maps theme-name keywords to a coarse sector. Rules are tried in
// order and the first keyword hit wins.
type sectorRule struct {
	Sector   string
	Keywords []string
}

var sectorRules = []sectorRule{
	{"AI", []string{"ai_", "ai ", "generative", "defai"}},
	{"DeFi", []string{"defi", "amm", "yield", "derivatives", "lending", "dex"}},
	{"Gaming", []string{"gaming", "metaverse", "play_to_earn", "move_to_earn"}},
	{"Memes", []string{"meme", "doge", "shib", "pepe"}},
	{"Privacy", []string{"privacy", "zero_knowledge"}},
	{"Infrastructure", []string{"infrastructure", "oracle", "storage", "depin", "layer_1"}},
	{"Stablecoins", []string{"stablecoin", "usd_", "fiat_"}},
	{"Ecosystem", []string{"ecosystem", "solana", "ethereum", "bnb", "bitcoin"}},
	{"VC_Portfolio", []string{"portfolio", "launchpad", "ventures"}},
	{"RWA", []string{"tokenized", "rwa", "real_world"}},
}

// SectorOther is returned when no keyword matches.
const SectorOther = "Other"

// SectorOf maps a theme name to its sector.
func SectorOf(theme string) string {
	lower := strings.ToLower(theme)
	for _, r := range sectorRules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				return r.Sector
			}
		}
	}
	return SectorOther
}
