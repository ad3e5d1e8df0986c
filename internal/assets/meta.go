package assets

import (
	"strings"

	"github.com/qingque-bot/qingque/internal/records"
)

// ///////////////////////////////////////////////
// Character Tables
// ///////////////////////////////////////////////

// CharacterMeta is a row of characters.json.
type CharacterMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Tag is the internal name; the player character is "playerboy" or
	// "playergirl" with a path suffix.
	Tag        string   `json:"tag"`
	Rarity     int      `json:"rarity"`
	Path       string   `json:"path"`
	Element    string   `json:"element"`
	MaxSP      int      `json:"max_sp"`
	Icon       string   `json:"icon"`
	Preview    string   `json:"preview"`
	Portrait   string   `json:"portrait"`
	Ranks      []string `json:"ranks"`
	Skills     []string `json:"skills"`
	SkillTrees []string `json:"skill_trees"`
}

// IsFemaleTrailblazer reports whether the character is the female
// protagonist.
func (c CharacterMeta) IsFemaleTrailblazer() bool {
	return strings.HasPrefix(c.Tag, "playergirl")
}

// EidolonMeta is a row of character_ranks.json.
type EidolonMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
	Desc string `json:"desc"`
	Icon string `json:"icon"`
}

// SkillMeta is a row of character_skills.json.
type SkillMeta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MaxLevel   int    `json:"max_level"`
	Type       string `json:"type"`
	TypeText   string `json:"type_text"`
	Effect     string `json:"effect"`
	SimpleDesc string `json:"simple_desc"`
	Desc       string `json:"desc"`
	Icon       string `json:"icon"`
}

// TraceMeta is a row of character_skill_trees.json.
type TraceMeta struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MaxLevel  int      `json:"max_level"`
	Anchor    string   `json:"anchor"`
	Icon      string   `json:"icon"`
	PrePoints []string `json:"pre_points"`
}

// ///////////////////////////////////////////////
// Equipment Tables
// ///////////////////////////////////////////////

// LightConeMeta is a row of light_cones.json.
type LightConeMeta struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Rarity   int    `json:"rarity"`
	Path     string `json:"path"`
	Desc     string `json:"desc"`
	Icon     string `json:"icon"`
	Preview  string `json:"preview"`
	Portrait string `json:"portrait"`
}

// RelicMeta is a row of relics.json.
type RelicMeta struct {
	ID     string            `json:"id"`
	SetID  string            `json:"set_id"`
	Name   string            `json:"name"`
	Rarity int               `json:"rarity"`
	Type   records.RelicType `json:"type"`
	Icon   string            `json:"icon"`
}

// TypeValue is a property bonus granted by a set or superimposition.
type TypeValue struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// RelicSetMeta is a row of relic_sets.json. Desc and Properties are indexed
// by bonus tier (2-piece first).
type RelicSetMeta struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Icon       string        `json:"icon"`
	Desc       []string      `json:"desc"`
	Properties [][]TypeValue `json:"properties"`
}

// ///////////////////////////////////////////////
// Attribute Tables
// ///////////////////////////////////////////////

// PathMeta is a row of paths.json.
type PathMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
	Icon string `json:"icon"`
}

// ElementMeta is a row of elements.json.
type ElementMeta struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// PropertyMeta is a row of properties.json, keyed by property type.
type PropertyMeta struct {
	Order   int    `json:"order"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Field   string `json:"field"`
	Icon    string `json:"icon"`
	Ratio   bool   `json:"ratio"`
	Percent bool   `json:"percent"`
	Affix   bool   `json:"affix"`
}

// DescriptionMeta is a row of descriptions.json.
type DescriptionMeta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// ///////////////////////////////////////////////
// Simulated Universe Tables
// ///////////////////////////////////////////////

// CurioMeta is a row of rogue_curios.json.
type CurioMeta struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Desc      string `json:"desc"`
	StoryDesc string `json:"story_desc"`
}

// BlessingMeta is a row of rogue_blessings.json.
type BlessingMeta struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Desc       string `json:"desc"`
	SimpleDesc string `json:"simple_desc"`
	DescBattle string `json:"desc_battle"`
	MaxLevel   int    `json:"max_level"`
}

// BlessingTypeMeta is a row of rogue_blessing_types.json.
type BlessingTypeMeta struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	Hint string `json:"hint"`
}

// LocustBlockMeta is a row of rogue_locust_blocks.json. Color is a "#RRGGBB"
// tint for the white variant of the icon.
type LocustBlockMeta struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ///////////////////////////////////////////////
// Nicknames
// ///////////////////////////////////////////////

// Nicknames maps ids to the community nicknames used for search.
type Nicknames struct {
	Characters map[string][]string `json:"characters"`
	LightCones map[string][]string `json:"light_cones"`
	RelicSets  map[string][]string `json:"relic_sets"`
}
