package records

import (
	"strconv"
	"strings"
	"time"
)

// ///////////////////////////////////////////////
// Common
// ///////////////////////////////////////////////

// ChinaStandardTime is the zone every battle chronicle timestamp is in.
var ChinaStandardTime = time.FixedZone("UTC+8", 8*60*60)

// ChronicleDate is a wall-clock date as the battle chronicle sends it.
type ChronicleDate struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Time returns d in [ChinaStandardTime].
func (d ChronicleDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, 0, 0, ChinaStandardTime)
}

// IsZero reports whether d was absent from the payload.
func (d ChronicleDate) IsZero() bool { return d.Year == 0 }

// ElementIcon returns the icon of a lowercase battle chronicle element
// name ("lightning" gives "icon/element/Lightning.png").
func ElementIcon(element string) string {
	element = strings.TrimSpace(element)
	if element == "" {
		return "icon/element/None.png"
	}
	return "icon/element/" + strings.ToUpper(element[:1]) + strings.ToLower(element[1:]) + ".png"
}

// Member is a character slot in a lineup.
type Member struct {
	ID      int    `json:"id"`
	Level   int    `json:"level"`
	Rarity  int    `json:"rarity"`
	Rank    int    `json:"rank"`
	Element string `json:"element"`
	Icon    string `json:"icon"`
}

// AvatarIcon returns the local icon path for the member.
func (m Member) AvatarIcon() string { return "icon/avatar/" + strconv.Itoa(m.ID) + ".png" }

// UserInfo is the account header shown on chronicle cards.
type UserInfo struct {
	Nickname string `json:"nickname"`
	Level    int    `json:"level"`
	Server   string `json:"server"`
}

// ///////////////////////////////////////////////
// Real-time Notes
// ///////////////////////////////////////////////

// Expedition is one assignment in progress.
type Expedition struct {
	Status        string   `json:"status"`
	RemainingTime int      `json:"remaining_time"`
	Name          string   `json:"name"`
	Avatars       []string `json:"avatars"`
}

// Notes is the real-time note: stamina and the weekly counters.
type Notes struct {
	Stamina            int          `json:"current_stamina"`
	MaxStamina         int          `json:"max_stamina"`
	StaminaRecoverTime int          `json:"stamina_recover_time"`
	ReserveStamina     int          `json:"current_reserve_stamina"`
	ReserveStaminaFull bool         `json:"is_reserve_stamina_full"`
	Expeditions        []Expedition `json:"expeditions"`
	TrainScore         int          `json:"current_train_score"`
	MaxTrainScore      int          `json:"max_train_score"`
	RogueScore         int          `json:"current_rogue_score"`
	MaxRogueScore      int          `json:"max_rogue_score"`
	WeeklyCocoonCount  int          `json:"weekly_cocoon_cnt"`
	WeeklyCocoonLimit  int          `json:"weekly_cocoon_limit"`
	// RequestedAt is when the note was fetched. Zero means now.
	RequestedAt time.Time `json:"requested_at"`
}

// DefaultNotes returns notes carrying the game's caps, for decoding over.
func DefaultNotes() Notes {
	return Notes{
		MaxStamina:        240,
		MaxTrainScore:     500,
		MaxRogueScore:     14000,
		WeeklyCocoonCount: 3,
		WeeklyCocoonLimit: 3,
	}
}

// StaminaFullAt returns when stamina reaches its cap.
func (n *Notes) StaminaFullAt() time.Time {
	return n.requestedAt().Add(time.Duration(n.StaminaRecoverTime) * time.Second)
}

func (n *Notes) requestedAt() time.Time {
	if n.RequestedAt.IsZero() {
		return time.Now()
	}
	return n.RequestedAt
}

// ///////////////////////////////////////////////
// Overview
// ///////////////////////////////////////////////

// OverviewStats are the account counters.
type OverviewStats struct {
	ActiveDays   int    `json:"active_days"`
	Avatars      int    `json:"avatar_num"`
	Achievements int    `json:"achievement_num"`
	Chests       int    `json:"chest_num"`
	// AbyssProcess is the localized memory of chaos progress, empty when
	// the player has not entered it.
	AbyssProcess string `json:"abyss_process"`
}

// OverviewAvatar is a featured character on the overview.
type OverviewAvatar struct {
	Member
	Name     string `json:"name"`
	IsChosen bool   `json:"is_chosen"`
}

// Overview is the battle chronicle index page.
type Overview struct {
	Stats           OverviewStats    `json:"stats"`
	Avatars         []OverviewAvatar `json:"avatar_list"`
	HeadIcon        string           `json:"cur_head_icon_url"`
	PhoneBackground string           `json:"phone_background_image_url"`
}

// ///////////////////////////////////////////////
// Forgotten Hall
// ///////////////////////////////////////////////

// HallNode is one half of a floor.
type HallNode struct {
	ChallengeTime ChronicleDate `json:"challenge_time"`
	Avatars       []Member      `json:"avatars"`
}

// HallFloor is one cleared floor.
type HallFloor struct {
	Name    string   `json:"name"`
	IsChaos bool     `json:"is_chaos"`
	Rounds  int      `json:"round_num"`
	Stars   int      `json:"star_num"`
	Node1   HallNode `json:"node_1"`
	Node2   HallNode `json:"node_2"`
}

// ForgottenHall is one memory of chaos period.
type ForgottenHall struct {
	ScheduleID int           `json:"schedule_id"`
	BeginTime  ChronicleDate `json:"begin_time"`
	EndTime    ChronicleDate `json:"end_time"`
	Stars      int           `json:"star_num"`
	MaxFloor   string        `json:"max_floor"`
	Battles    int           `json:"battle_num"`
	HasData    bool          `json:"has_data"`
	Floors     []HallFloor   `json:"all_floor_detail"`
}

// ///////////////////////////////////////////////
// Characters
// ///////////////////////////////////////////////

// RosterLightCone is the equipped weapon in the character list.
type RosterLightCone struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Level int    `json:"level"`
	Rank  int    `json:"rank"`
}

// RosterRelic is a relic in the character list; Pos is 1 through 6.
type RosterRelic struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Pos    int    `json:"pos"`
	Rarity int    `json:"rarity"`
	Icon   string `json:"icon"`
	Level  int    `json:"level"`
}

// RosterCharacter is one owned character.
type RosterCharacter struct {
	Member
	Name      string           `json:"name"`
	Equip     *RosterLightCone `json:"equip"`
	Relics    []RosterRelic    `json:"relics"`
	Ornaments []RosterRelic    `json:"ornaments"`
}

// Roster is the owned character list with its owner.
type Roster struct {
	User       UserInfo          `json:"user"`
	Characters []RosterCharacter `json:"avatar_list"`
}
