package battlenet

import "wowprofile/pkg/models"

// Link is a hypermedia reference to another API document.
type Link struct {
	Href string `json:"href"`
}

// KeyedRef is the common {key, name, id} reference shape.
type KeyedRef struct {
	Key  Link            `json:"key"`
	Name LocalizedString `json:"name"`
	ID   int             `json:"id"`
}

// Collection summaries

type MountCollection struct {
	Mounts []MountRef `json:"mounts"`
}

type MountRef struct {
	Mount      KeyedRef `json:"mount"`
	IsUseable  bool     `json:"is_useable"`
	IsFavorite bool     `json:"is_favorite"`
}

type PetCollection struct {
	Pets []PetRef `json:"pets"`
}

type PetRef struct {
	Species KeyedRef `json:"species"`
	Level   int      `json:"level"`
	ID      int      `json:"id"`
}

type ToyCollection struct {
	Toys []ToyRef `json:"toys"`
}

type ToyRef struct {
	Toy        KeyedRef `json:"toy"`
	IsFavorite bool     `json:"is_favorite"`
}

type TitleCollection struct {
	ActiveTitle ActiveTitleRef `json:"active_title"`
	Titles      []TitleRef     `json:"titles"`
}

type TitleRef struct {
	Key  Link            `json:"key"`
	Name LocalizedString `json:"name"`
	ID   int             `json:"id"`
}

type ActiveTitleRef struct {
	Key           Link            `json:"key"`
	Name          LocalizedString `json:"name"`
	ID            int             `json:"id"`
	DisplayString LocalizedString `json:"display_string"`
}

// Resolved details

type Source struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type MountDetail struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	CreatureDisplays []KeyedRef `json:"creature_displays"`
	Source           *Source    `json:"source"`
}

type PetDetail struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon"`
	BattlePetType BattlePetType `json:"battle_pet_type"`
	Source        *Source       `json:"source"`
}

type BattlePetType struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type ToyDetail struct {
	ID     int      `json:"id"`
	Item   KeyedRef `json:"item"`
	Source *Source  `json:"source"`
	Media  KeyedRef `json:"media"`
}

// Media is a creature display or item media document.
type Media struct {
	Assets []Asset `json:"assets"`
}

type Asset struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	FileDataID int    `json:"file_data_id"`
}

// Find returns the value of the asset with the given key, or "".
func (m Media) Find(key string) string {
	for _, a := range m.Assets {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// First returns the first asset's value, or "" when there is none.
func (m Media) First() string {
	if len(m.Assets) == 0 {
		return ""
	}
	return m.Assets[0].Value
}

// Character documents

type MythicSeasonProfile struct {
	Season       KeyedRef      `json:"season"`
	BestRuns     []MythicRun   `json:"best_runs"`
	MythicRating models.Rating `json:"mythic_rating"`
}

type MythicRun struct {
	CompletedTimestamp    int64         `json:"completed_timestamp"`
	Duration              int64         `json:"duration"`
	KeystoneLevel         int           `json:"keystone_level"`
	KeystoneAffixes       []KeyedRef    `json:"keystone_affixes"`
	Dungeon               KeyedRef      `json:"dungeon"`
	IsCompletedWithinTime bool          `json:"is_completed_within_time"`
	MythicRating          models.Rating `json:"mythic_rating"`
}

type CharacterMedia struct {
	Character CharacterRef `json:"character"`
	Assets    []Asset      `json:"assets"`
}

type CharacterRef struct {
	Key   Link     `json:"key"`
	Name  string   `json:"name"`
	ID    int      `json:"id"`
	Realm RealmRef `json:"realm"`
}

type RealmRef struct {
	Key  Link            `json:"key"`
	Name LocalizedString `json:"name"`
	ID   int             `json:"id"`
	Slug string          `json:"slug"`
}
