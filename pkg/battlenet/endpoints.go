package battlenet

import (
	"fmt"
	"net/url"
	"strings"
)

// Region is a Battle.net API region.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
	RegionKR Region = "kr"
	RegionTW Region = "tw"
)

// DefaultLocale is sent with every request.
const DefaultLocale = "en_US"

// ParseRegion returns the region named by s. Unknown or empty input falls
// back to RegionUS with ok set to false.
func ParseRegion(s string) (region Region, ok bool) {
	switch r := Region(strings.ToLower(strings.TrimSpace(s))); r {
	case RegionUS, RegionEU, RegionKR, RegionTW:
		return r, true
	default:
		return RegionUS, false
	}
}

// APIBaseURL returns the profile API host for the region.
func (r Region) APIBaseURL() string {
	return fmt.Sprintf("https://%s.api.blizzard.com", r)
}

// ProfileNamespace is the Battlenet-Namespace header value for profile data.
func (r Region) ProfileNamespace() string {
	return "profile-" + string(r)
}

// Slug converts a realm or character name into its URL path form:
// lower-case, spaces become dashes, apostrophes are dropped.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "'", "")
	return strings.Join(strings.Fields(s), "-")
}

// CharacterPath returns the endpoint for a character sub-resource, e.g.
// CharacterPath("area-52", "thrall", "collections/mounts").
func CharacterPath(realm, character, resource string) string {
	return fmt.Sprintf("profile/wow/character/%s/%s/%s",
		url.PathEscape(realm), url.PathEscape(character), resource)
}

// Character sub-resources.
const (
	ResourceMounts         = "collections/mounts"
	ResourcePets           = "collections/pets"
	ResourceToys           = "collections/toys"
	ResourceTitles         = "titles"
	ResourceCharacterMedia = "character-media"
)

// MythicSeasonResource returns the sub-resource for one Mythic+ season.
func MythicSeasonResource(season int) string {
	return fmt.Sprintf("mythic-keystone-profile/season/%d", season)
}

// LocaleQuery is the query sent with every profile request.
func LocaleQuery() url.Values {
	return url.Values{"locale": {DefaultLocale}}
}
