// Package records defines the game-data records the card composers consume.
//
// The records mirror the JSON shapes returned by the two upstream services:
// the Mihomo showcase API (characters, relics, player profile) and the
// HoyoLab battle chronicle (notes, overview, forgotten hall, simulated
// universe). Upstream clients decode straight into these types.
package records

import (
	"fmt"
	"slices"
	"strings"
)

// ///////////////////////////////////////////////
// Shared References
// ///////////////////////////////////////////////

// Ref names a path or an avatar by id with its display name and icon.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ElementRef is a combat element attached to a character.
type ElementRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// ///////////////////////////////////////////////
// Stats
// ///////////////////////////////////////////////

// Stat is one numeric attribute (HP, crit rate, fire DMG boost, ...).
type Stat struct {
	// Field is the stat kind, e.g. "atk" or "crit_dmg".
	Field string `json:"field"`
	// Name is the localized display name.
	Name string `json:"name"`
	// Icon is the asset-relative icon path.
	Icon string `json:"icon"`
	// Value is the raw value; percentages are fractions (0.5 is 50%).
	Value float64 `json:"value"`
	// Display is the upstream pre-formatted value.
	Display string `json:"display"`
	// Percent marks Value as a fraction.
	Percent bool `json:"percent"`
}

// Format renders the value the way the cards print it: whole numbers for
// flat stats, one decimal for percentages.
func (s Stat) Format() string {
	if s.Percent {
		return fmt.Sprintf("%.1f%%", s.Value*100)
	}
	return fmt.Sprintf("%.0f", s.Value)
}

// Affix is a relic or light cone stat line. Sub stats carry the number of
// upgrade rolls in Count and the roll quality in Step.
type Affix struct {
	Stat
	// Type is the property type, e.g. "HPDelta" or "CriticalChanceBase".
	Type string `json:"type"`
	// Count is how many times the sub stat rolled.
	Count int `json:"count"`
	// Step is the accumulated roll quality above the minimum.
	Step int `json:"step"`
}

// ///////////////////////////////////////////////
// Relics
// ///////////////////////////////////////////////

// RelicType is the equipment slot of a relic.
type RelicType string

const (
	RelicHead   RelicType = "HEAD"
	RelicHand   RelicType = "HAND"
	RelicBody   RelicType = "BODY"
	RelicFoot   RelicType = "FOOT"
	RelicSphere RelicType = "NECK"
	RelicRope   RelicType = "OBJECT"
)

// Cavern lists the non-planar slots in display order.
var Cavern = []RelicType{RelicHead, RelicHand, RelicBody, RelicFoot}

// Planar lists the planar ornament slots in display order.
var Planar = []RelicType{RelicSphere, RelicRope}

// Order returns the display position of the slot, 1 through 6, or 0 for an
// unknown slot.
func (t RelicType) Order() int {
	switch t {
	case RelicHead:
		return 1
	case RelicHand:
		return 2
	case RelicBody:
		return 3
	case RelicFoot:
		return 4
	case RelicSphere:
		return 5
	case RelicRope:
		return 6
	}
	return 0
}

// IsPlanar reports whether t is a planar ornament slot.
func (t RelicType) IsPlanar() bool { return t == RelicSphere || t == RelicRope }

// Relic is an equipped relic.
type Relic struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SetID   string `json:"set_id"`
	SetName string `json:"set_name"`
	// Type is the slot. Upstream omits it; composers fill it from the index.
	Type   RelicType `json:"type,omitempty"`
	Rarity int       `json:"rarity"`
	Level  int       `json:"level"`
	Icon   string    `json:"icon"`
	// Main is the main stat.
	Main Affix `json:"main_affix"`
	// Subs are up to four sub stats.
	Subs []Affix `json:"sub_affix"`
}

// RelicSet is an active set bonus. A character wearing four pieces of one
// set lists that set twice, once with Num 2 and once with Num 4.
type RelicSet struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Num        int     `json:"num"`
	Desc       string  `json:"desc"`
	Properties []Affix `json:"properties"`
}

// ///////////////////////////////////////////////
// Light Cone
// ///////////////////////////////////////////////

// LightCone is the equipped weapon.
type LightCone struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rarity    int    `json:"rarity"`
	// Rank is the superimposition, 1 through 5.
	Rank       int     `json:"rank"`
	Level      int     `json:"level"`
	Promotion  int     `json:"promotion"`
	Icon       string  `json:"icon"`
	Preview    string  `json:"preview"`
	Portrait   string  `json:"portrait"`
	Path       Ref     `json:"path"`
	Attributes []Stat  `json:"attributes"`
	Properties []Affix `json:"properties"`
}

// ///////////////////////////////////////////////
// Skills
// ///////////////////////////////////////////////

// SkillType is the kind of a character ability.
type SkillType string

const (
	SkillNormal     SkillType = "Normal"
	SkillBattle     SkillType = "BPSkill"
	SkillUltimate   SkillType = "Ultra"
	SkillTalent     SkillType = "Talent"
	SkillTechnique  SkillType = "Maze"
	SkillMazeNormal SkillType = "MazeNormal"
)

// Order returns the display position of the skill type; unknown types sort
// last.
func (t SkillType) Order() int {
	switch t {
	case SkillNormal:
		return 1
	case SkillBattle:
		return 2
	case SkillUltimate:
		return 3
	case SkillTalent:
		return 4
	case SkillTechnique:
		return 5
	}
	return 6
}

// Skill is one character ability with its current level.
type Skill struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Level      int       `json:"level"`
	MaxLevel   int       `json:"max_level"`
	Type       SkillType `json:"type"`
	TypeText   string    `json:"type_text"`
	Effect     string    `json:"effect"`
	EffectText string    `json:"effect_text"`
	Desc       string    `json:"desc"`
	Icon       string    `json:"icon"`
}

// SkillTreeNode is one node of a character's trace tree.
type SkillTreeNode struct {
	ID       string `json:"id"`
	Level    int    `json:"level"`
	MaxLevel int    `json:"max_level"`
	Anchor   string `json:"anchor"`
	Icon     string `json:"icon"`
}

// IsMajorTrace reports whether the node is one of the three ascension
// traces, whose icons live under the skilltree directory.
func (n SkillTreeNode) IsMajorTrace() bool { return strings.Contains(n.Icon, "skilltree") }

// ///////////////////////////////////////////////
// Character
// ///////////////////////////////////////////////

// Character is one showcased character.
type Character struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity int    `json:"rarity"`
	Level  int    `json:"level"`
	// Rank is the number of unlocked eidolons.
	Rank       int             `json:"rank"`
	Promotion  int             `json:"promotion"`
	LightCone  *LightCone      `json:"light_cone"`
	Relics     []Relic         `json:"relics"`
	RelicSets  []RelicSet      `json:"relic_sets"`
	Attributes []Stat          `json:"attributes"`
	Additions  []Stat          `json:"additions"`
	Path       Ref             `json:"path"`
	Element    ElementRef      `json:"element"`
	Skills     []Skill         `json:"skills"`
	SkillTrees []SkillTreeNode `json:"skill_trees"`
	Icon       string          `json:"icon"`
	Preview    string          `json:"preview"`
	Portrait   string          `json:"portrait"`
	RankIcons  []string        `json:"rank_icons"`
}

// Stats aggregates the character's attributes and additions.
func (c *Character) Stats() []Stat {
	return Aggregate(c.Attributes, c.Additions)
}

// DisplaySkills returns one skill per type in display order, skipping the
// overworld basic attack.
func (c *Character) DisplaySkills() []Skill {
	seen := make(map[SkillType]bool, len(c.Skills))
	out := make([]Skill, 0, 5)
	for _, s := range c.Skills {
		if s.Type == SkillMazeNormal || seen[s.Type] {
			continue
		}
		seen[s.Type] = true
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b Skill) int { return a.Type.Order() - b.Type.Order() })
	return out
}

// MajorTraces returns the ascension traces ordered by icon path.
func (c *Character) MajorTraces() []SkillTreeNode {
	var out []SkillTreeNode
	for _, n := range c.SkillTrees {
		if n.IsMajorTrace() {
			out = append(out, n)
		}
	}
	sortNodesByIcon(out)
	return out
}

// IsTrailblazer reports whether the character is one of the player-named
// protagonists.
func (c *Character) IsTrailblazer() bool {
	return strings.HasPrefix(c.ID, "80")
}

// ///////////////////////////////////////////////
// Player
// ///////////////////////////////////////////////

// ChallengeData is the memory of chaos progress on a player profile.
type ChallengeData struct {
	PreMazeGroupIndex int `json:"pre_maze_group_index"`
	MazeGroupIndex    int `json:"maze_group_index"`
	MazeGroupID       int `json:"maze_group_id"`
}

// SpaceInfo holds the player's collection counters.
type SpaceInfo struct {
	Challenge        ChallengeData `json:"challenge_data"`
	PassAreaProgress int           `json:"pass_area_progress"`
	LightConeCount   int           `json:"light_cone_count"`
	AvatarCount      int           `json:"avatar_count"`
	AchievementCount int           `json:"achievement_count"`
}

// PlayerInfo is the public profile of a player.
type PlayerInfo struct {
	UID         string    `json:"uid"`
	Nickname    string    `json:"nickname"`
	Level       int       `json:"level"`
	WorldLevel  int       `json:"world_level"`
	FriendCount int       `json:"friend_count"`
	Avatar      Ref       `json:"avatar"`
	Signature   string    `json:"signature"`
	IsDisplay   bool      `json:"is_display"`
	SpaceInfo   SpaceInfo `json:"space_info"`
}

// Normalized returns c with the fields upstream sometimes swaps put back.
// A memory stage index is never 100 or above, so such a value there is the
// chaos floor id and the other two fields have rotated with it.
func (c ChallengeData) Normalized() ChallengeData {
	if c.PreMazeGroupIndex < 100 {
		return c
	}
	return ChallengeData{
		PreMazeGroupIndex: c.MazeGroupIndex,
		MazeGroupIndex:    c.MazeGroupID,
		MazeGroupID:       c.PreMazeGroupIndex,
	}
}

// MemoryFloor returns the highest cleared memory stage.
func (p *PlayerInfo) MemoryFloor() int {
	return p.SpaceInfo.Challenge.Normalized().PreMazeGroupIndex
}

// ChaosFloor returns the highest cleared memory of chaos stage.
func (p *PlayerInfo) ChaosFloor() int {
	return p.SpaceInfo.Challenge.Normalized().MazeGroupIndex
}

// Profile is a full showcase response.
type Profile struct {
	Player     PlayerInfo  `json:"player"`
	Characters []Character `json:"characters"`
}

// RegionKey returns the translation key of the server region a UID belongs
// to, or "" when the UID is not recognised.
func RegionKey(uid string) string {
	if uid == "" {
		return ""
	}
	switch uid[0] {
	case '1', '2', '5':
		return "region.short.china"
	case '6':
		return "region.short.na"
	case '7':
		return "region.short.eur"
	case '8':
		return "region.short.asia"
	case '9':
		return "region.short.taiwan"
	}
	return ""
}
