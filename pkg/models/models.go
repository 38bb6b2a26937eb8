package models

// Profile is the consolidated document written for one character.
type Profile struct {
	Titles     Titles         `json:"titles" yaml:"titles"`
	Mounts     []Mount        `json:"mounts" yaml:"mounts"`
	Pets       []Pet          `json:"pets" yaml:"pets"`
	Toys       []Toy          `json:"toys" yaml:"toys"`
	MythicPlus []MythicSeason `json:"mythicPlus" yaml:"mythicPlus"`
	Character  Character      `json:"character" yaml:"character"`
}

// Mount is a collected mount. Rarity is the share of profiles that own it,
// or nil when unknown.
type Mount struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ID          int    `json:"id" yaml:"id"`
	Icon        string `json:"icon" yaml:"icon"`
	Rarity      *int   `json:"rarity" yaml:"rarity"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Pet is a collected battle pet species. ID is the species id.
type Pet struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ID          int    `json:"id" yaml:"id"`
	Icon        string `json:"icon" yaml:"icon"`
	Type        string `json:"type" yaml:"type"`
	Rarity      *int   `json:"rarity" yaml:"rarity"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

type Toy struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	ID     int    `json:"id" yaml:"id"`
	Icon   string `json:"icon" yaml:"icon"`
	Rarity *int   `json:"rarity" yaml:"rarity"`
}

type Titles struct {
	Active ActiveTitle  `json:"active" yaml:"active"`
	Titles []TitleEntry `json:"titles" yaml:"titles"`
}

type ActiveTitle struct {
	Name          string `json:"name" yaml:"name"`
	DisplayString string `json:"display_string" yaml:"display_string"`
}

type TitleEntry struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Rarity *int   `json:"rarity" yaml:"rarity"`
}

// MythicSeason is the character's Mythic+ record for one season.
type MythicSeason struct {
	ID       int       `json:"id" yaml:"id"`
	IO       Rating    `json:"io" yaml:"io"`
	BestRuns []BestRun `json:"best_runs" yaml:"best_runs"`
}

type BestRun struct {
	CompletedTimestamp    int64    `json:"completed_timestamp" yaml:"completed_timestamp"`
	DungeonName           string   `json:"dungeon_name" yaml:"dungeon_name"`
	Duration              int64    `json:"duration" yaml:"duration"`
	IsCompletedWithinTime bool     `json:"is_completed_within_time" yaml:"is_completed_within_time"`
	Affixes               []string `json:"affixes" yaml:"affixes"`
	Level                 int      `json:"level" yaml:"level"`
	Rating                Rating   `json:"rating" yaml:"rating"`
}

// Rating is a Mythic+ score with the color Blizzard renders it in.
type Rating struct {
	Color  Color   `json:"color" yaml:"color"`
	Rating float64 `json:"rating" yaml:"rating"`
}

type Color struct {
	R int     `json:"r" yaml:"r"`
	G int     `json:"g" yaml:"g"`
	B int     `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// Character carries the render URLs for the character. Missing renders are
// empty strings.
type Character struct {
	Name   string `json:"name" yaml:"name"`
	Realm  string `json:"realm" yaml:"realm"`
	Main   string `json:"main" yaml:"main"`
	Avatar string `json:"avatar" yaml:"avatar"`
	Inset  string `json:"inset" yaml:"inset"`
}
