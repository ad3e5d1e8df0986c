package records

import (
	"fmt"
	"slices"
	"strings"
)

// ///////////////////////////////////////////////
// Blessing Types
// ///////////////////////////////////////////////

// BlessingType is a path of the simulated universe. Blessings, pathstriders
// and the per-path blessing counters are all keyed by it.
type BlessingType int

const (
	BlessingPreservation BlessingType = 120
	BlessingRemembrance  BlessingType = 121
	BlessingNihility     BlessingType = 122
	BlessingAbundance    BlessingType = 123
	BlessingHunt         BlessingType = 124
	BlessingDestruction  BlessingType = 125
	BlessingElation      BlessingType = 126
	BlessingPropagation  BlessingType = 127
)

// blessingIcons names the path icon of each type. Remembrance and Elation
// use their internal file names, Propagation has no icon of its own.
var blessingIcons = map[BlessingType]string{
	BlessingPreservation: "Preservation",
	BlessingRemembrance:  "Memory",
	BlessingNihility:     "Nihility",
	BlessingAbundance:    "Abundance",
	BlessingHunt:         "Hunt",
	BlessingDestruction:  "Destruction",
	BlessingElation:      "Joy",
	BlessingPropagation:  "None",
}

// Icon returns the path icon for t.
func (t BlessingType) Icon() string {
	name, ok := blessingIcons[t]
	if !ok {
		name = "None"
	}
	return "icon/path/" + name + ".png"
}

// ///////////////////////////////////////////////
// Runs
// ///////////////////////////////////////////////

// BlessingKind is a blessing path with the number obtained.
type BlessingKind struct {
	ID    BlessingType `json:"id"`
	Name  string       `json:"name"`
	Count int          `json:"cnt"`
}

// BlessingItem is one obtained blessing. Rank is 1 through 3.
type BlessingItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Enhanced bool   `json:"is_evoluted"`
}

// Blessings groups the blessings obtained on one path.
type Blessings struct {
	Kind  BlessingKind   `json:"base_type"`
	Items []BlessingItem `json:"items"`
}

// Curio is an obtained curio.
type Curio struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// RogueRun is one finished simulated universe run.
type RogueRun struct {
	// Progress is the world number.
	Progress   int            `json:"progress"`
	Name       string         `json:"name"`
	FinishTime ChronicleDate  `json:"finish_time"`
	Score      int            `json:"score"`
	Difficulty int            `json:"difficulty"`
	Blessings  []Blessings    `json:"buffs"`
	Kinds      []BlessingKind `json:"base_type_list"`
	Curios     []Curio        `json:"miracles"`
	Lineup     []Member       `json:"final_lineup"`
}

// WorldIcon returns the planet icon of the run's world.
func (r *RogueRun) WorldIcon() string {
	return fmt.Sprintf("icon/rogue/worlds/PlanetM%d.png", r.Progress)
}

// HasBlessings reports whether any path group holds a blessing.
func (r *RogueRun) HasBlessings() bool {
	for _, b := range r.Blessings {
		if len(b.Items) > 0 {
			return true
		}
	}
	return false
}

// RoguePeriodBasic summarises one weekly period.
type RoguePeriodBasic struct {
	ID            int           `json:"id"`
	FinishCount   int           `json:"finish_cnt"`
	ScheduleBegin ChronicleDate `json:"schedule_begin"`
	ScheduleEnd   ChronicleDate `json:"schedule_end"`
	Score         int           `json:"current_rogue_score"`
	MaxScore      int           `json:"max_rogue_score"`
}

// RoguePeriod is the record of one weekly period.
type RoguePeriod struct {
	HasData bool             `json:"has_data"`
	Basic   RoguePeriodBasic `json:"basic"`
	Records []RogueRun       `json:"records"`
	Best    *RogueRun        `json:"best_record"`
}

// RogueOverview holds account-wide unlock counters.
type RogueOverview struct {
	UnlockedBlessings   int `json:"unlocked_buff_num"`
	UnlockedCurios      int `json:"unlocked_miracle_num"`
	UnlockedSkillPoints int `json:"unlocked_skill_points"`
}

// SimulatedUniverse is the simulated universe chronicle.
type SimulatedUniverse struct {
	User     UserInfo      `json:"role"`
	Overview RogueOverview `json:"basic_info"`
	Current  RoguePeriod   `json:"current_record"`
	Previous RoguePeriod   `json:"last_record"`
}

// ///////////////////////////////////////////////
// Swarm Disaster
// ///////////////////////////////////////////////

// SwarmWorldIcon is the planet icon shown on swarm disaster runs.
const SwarmWorldIcon = "icon/rogue/worlds/PlanetLocust.png"

// Pathstrider is a path's strider level in the swarm disaster.
type Pathstrider struct {
	Type  BlessingType `json:"id"`
	Level int          `json:"level"`
}

// DomainCount is how many domains of one block type the run crossed.
type DomainCount struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// IsBoss reports whether the block is one of the two boss domains.
func (d DomainCount) IsBoss() bool { return d.ID == 11 || d.ID == 12 }

// SwarmRun is one finished swarm disaster run.
type SwarmRun struct {
	RogueRun
	Blocks []DomainCount `json:"blocks"`
}

// Swarm is a swarm disaster run with the account's pathstriders.
type Swarm struct {
	User     UserInfo      `json:"role"`
	Run      SwarmRun      `json:"record"`
	Striders []Pathstrider `json:"destiny"`
}

// ///////////////////////////////////////////////
// Text
// ///////////////////////////////////////////////

// StripRichText removes Unity rich text tags ("<color=#fff>", "</b>", ...)
// and replaces the double angle quotes the game uses for names.
func StripRichText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[start:], '>')
		if end < 0 || !isRichTag(s[start+1:start+end]) {
			b.WriteString(s[:start+1])
			s = s[start+1:]
			continue
		}
		b.WriteString(s[:start])
		s = s[start+end+1:]
	}
	return strings.NewReplacer("≪", "<<", "≫", ">>").Replace(b.String())
}

// richTags are the tag names Unity accepts.
var richTags = []string{"b", "i", "u", "s", "color", "size", "material", "quad", "align", "unbreak"}

func isRichTag(body string) bool {
	body = strings.TrimPrefix(body, "/")
	name, _, _ := strings.Cut(body, "=")
	name = strings.ToLower(name)
	return slices.Contains(richTags, name)
}
