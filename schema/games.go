package schema

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultBaseURL is formatted with the region and the game. All games are
// served from api.worldoftanks.* hosts.
const DefaultBaseURL = "https://api.worldoftanks.%s/%s/"

// AllowedGames lists the game identifiers with a schema
var AllowedGames = []string{"wot", "wotb", "wotx", "wows", "wowp", "wgn"}

// AllowedRegions lists the region identifiers accepted in URLs
var AllowedRegions = []string{"ru", "eu", "na", "asia", "ps4", "xbox"}

// CheckGame fails with a *ValidationError for an unknown game
func CheckGame(game string) error {
	if !slices.Contains(AllowedGames, game) {
		return validationErrorf("game '%s' is not in allowed list: %s", game, strings.Join(AllowedGames, ", "))
	}
	return nil
}

// CheckRegion fails with a *ValidationError for an unknown region
func CheckRegion(region string) error {
	if !slices.Contains(AllowedRegions, region) {
		return validationErrorf("region '%s' is not in allowed list: %s", region, strings.Join(AllowedRegions, ", "))
	}
	return nil
}

// RegionURL returns the API base URL of game in region. An empty template
// selects DefaultBaseURL.
func RegionURL(template, region, game string) (string, error) {
	if err := CheckGame(game); err != nil {
		return "", err
	}
	if err := CheckRegion(region); err != nil {
		return "", err
	}
	if template == "" {
		template = DefaultBaseURL
	}
	u := fmt.Sprintf(template, region, game)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u, nil
}
