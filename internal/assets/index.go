// Package assets loads the per-language game data index (StarRailRes
// layout) that the card composers look names, icons and descriptions up in.
//
// An [Index] covers one language. Every table loads together: [Index.Load]
// either makes all of them available or leaves the index as it was. A
// [Registry] shares one index per language between concurrent composers and
// unloads it when the last user releases it.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/paths"
)

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

var (
	// ErrNotLoaded is returned by accessors used before [Index.Load].
	ErrNotLoaded = errors.New("asset index not loaded")
	// ErrMissingEntry matches every [*MissingEntryError].
	ErrMissingEntry = errors.New("missing index entry")
	// ErrMissingTable is returned when a table file does not exist.
	ErrMissingTable = fmt.Errorf("missing index table: %w", fs.ErrNotExist)
)

// MissingEntryError reports an id absent from a loaded table.
type MissingEntryError struct {
	Table string
	ID    string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("%s: no entry %q", e.Table, e.ID)
}

// Is makes errors.Is(err, ErrMissingEntry) hold.
func (e *MissingEntryError) Is(target error) bool { return target == ErrMissingEntry }

// ///////////////////////////////////////////////
// Tables
// ///////////////////////////////////////////////

// Table file names, without the .json extension.
const (
	TableCharacters    = "characters"
	TableEidolons      = "character_ranks"
	TableSkills        = "character_skills"
	TableTraces        = "character_skill_trees"
	TableLightCones    = "light_cones"
	TableRelics        = "relics"
	TableRelicSets     = "relic_sets"
	TablePaths         = "paths"
	TableElements      = "elements"
	TableProperties    = "properties"
	TableDescriptions  = "descriptions"
	TableCurios        = "rogue_curios"
	TableBlessings     = "rogue_blessings"
	TableBlessingTypes = "rogue_blessing_types"
	TableLocustBlocks  = "rogue_locust_blocks"
	TableNicknames     = "nickname"
)

// AllowedPaths are the doublestar patterns, relative to the asset root, that
// index tables may be read from.
var AllowedPaths = []string{
	paths.IndexDir + "/*/*.json",
	paths.IndexDir + "/" + paths.NicknameFile,
}

// tables holds the decoded maps. A nil map is a table not loaded yet.
type tables struct {
	characters    map[string]CharacterMeta
	eidolons      map[string]EidolonMeta
	skills        map[string]SkillMeta
	traces        map[string]TraceMeta
	lightCones    map[string]LightConeMeta
	relics        map[string]RelicMeta
	relicSets     map[string]RelicSetMeta
	paths         map[string]PathMeta
	elements      map[string]ElementMeta
	properties    map[string]PropertyMeta
	descriptions  map[string]DescriptionMeta
	curios        map[string]CurioMeta
	blessings     map[string]BlessingMeta
	blessingTypes map[string]BlessingTypeMeta
	locustBlocks  map[string]LocustBlockMeta
	nicknames     *Nicknames
}

// tableLoader decodes one table file into t.
type tableLoader struct {
	name   string
	loaded func(t *tables) bool
	decode func(t *tables, data []byte) error
}

// decodeTable decodes a JSON object keyed by id.
func decodeTable[T any](data []byte) (map[string]T, error) {
	m := make(map[string]T)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// loaders lists every language table in load order.
var loaders = []tableLoader{
	{TableCharacters, func(t *tables) bool { return t.characters != nil }, func(t *tables, b []byte) (err error) {
		t.characters, err = decodeTable[CharacterMeta](b)
		return err
	}},
	{TableEidolons, func(t *tables) bool { return t.eidolons != nil }, func(t *tables, b []byte) (err error) {
		t.eidolons, err = decodeTable[EidolonMeta](b)
		return err
	}},
	{TableSkills, func(t *tables) bool { return t.skills != nil }, func(t *tables, b []byte) (err error) {
		t.skills, err = decodeTable[SkillMeta](b)
		return err
	}},
	{TableTraces, func(t *tables) bool { return t.traces != nil }, func(t *tables, b []byte) (err error) {
		t.traces, err = decodeTable[TraceMeta](b)
		return err
	}},
	{TableLightCones, func(t *tables) bool { return t.lightCones != nil }, func(t *tables, b []byte) (err error) {
		t.lightCones, err = decodeTable[LightConeMeta](b)
		return err
	}},
	{TableRelics, func(t *tables) bool { return t.relics != nil }, func(t *tables, b []byte) (err error) {
		t.relics, err = decodeTable[RelicMeta](b)
		return err
	}},
	{TableRelicSets, func(t *tables) bool { return t.relicSets != nil }, func(t *tables, b []byte) (err error) {
		t.relicSets, err = decodeTable[RelicSetMeta](b)
		return err
	}},
	{TablePaths, func(t *tables) bool { return t.paths != nil }, func(t *tables, b []byte) (err error) {
		t.paths, err = decodeTable[PathMeta](b)
		return err
	}},
	{TableElements, func(t *tables) bool { return t.elements != nil }, func(t *tables, b []byte) (err error) {
		t.elements, err = decodeTable[ElementMeta](b)
		return err
	}},
	{TableProperties, func(t *tables) bool { return t.properties != nil }, func(t *tables, b []byte) (err error) {
		t.properties, err = decodeTable[PropertyMeta](b)
		return err
	}},
	{TableDescriptions, func(t *tables) bool { return t.descriptions != nil }, func(t *tables, b []byte) (err error) {
		t.descriptions, err = decodeTable[DescriptionMeta](b)
		return err
	}},
	{TableCurios, func(t *tables) bool { return t.curios != nil }, func(t *tables, b []byte) (err error) {
		t.curios, err = decodeTable[CurioMeta](b)
		return err
	}},
	{TableBlessings, func(t *tables) bool { return t.blessings != nil }, func(t *tables, b []byte) (err error) {
		t.blessings, err = decodeTable[BlessingMeta](b)
		return err
	}},
	{TableBlessingTypes, func(t *tables) bool { return t.blessingTypes != nil }, func(t *tables, b []byte) (err error) {
		t.blessingTypes, err = decodeTable[BlessingTypeMeta](b)
		return err
	}},
	{TableLocustBlocks, func(t *tables) bool { return t.locustBlocks != nil }, func(t *tables, b []byte) (err error) {
		t.locustBlocks, err = decodeTable[LocustBlockMeta](b)
		return err
	}},
}

// Tables returns the names of every per-language table.
func Tables() []string {
	out := make([]string, len(loaders))
	for i, l := range loaders {
		out[i] = l.name
	}
	return out
}

// ///////////////////////////////////////////////
// Index
// ///////////////////////////////////////////////

// Index is the game data of one language.
type Index struct {
	// dir locates the table files.
	dir paths.AssetDir
	// tag selects the index/<tag> directory.
	tag lang.Tag
	// loadMu serializes Load so concurrent callers read each file once.
	loadMu sync.Mutex
	// mu guards t and loaded.
	mu sync.RWMutex
	t  tables
	// loaded is set once every table is present.
	loaded bool
}

// New returns an unloaded index for tag rooted at the asset directory root.
func New(root string, tag lang.Tag) *Index {
	return &Index{dir: paths.AssetDir{Root: root}, tag: tag}
}

// Tag returns the language of the index.
func (idx *Index) Tag() lang.Tag { return idx.tag }

// Loaded reports whether every table is available.
func (idx *Index) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.loaded
}

// Load reads every table that is not loaded yet. Tables already present are
// not read again. If any table fails, none of the tables read by this call
// are kept.
func (idx *Index) Load(ctx context.Context) error {
	idx.loadMu.Lock()
	defer idx.loadMu.Unlock()

	idx.mu.RLock()
	staged := idx.t
	done := idx.loaded
	idx.mu.RUnlock()
	if done {
		return nil
	}

	read := 0
	for _, l := range loaders {
		if l.loaded(&staged) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := idx.readTable(idx.dir.Index(idx.tag.IndexDir(), l.name))
		if err != nil {
			return fmt.Errorf("load %s/%s: %w", idx.tag, l.name, err)
		}
		if err := l.decode(&staged, data); err != nil {
			return fmt.Errorf("decode %s/%s: %w", idx.tag, l.name, err)
		}
		read++
	}
	if staged.nicknames == nil {
		data, err := idx.readTable(idx.dir.Nickname())
		if err != nil {
			return fmt.Errorf("load nicknames: %w", err)
		}
		var nn Nicknames
		if err := json.Unmarshal(data, &nn); err != nil {
			return fmt.Errorf("decode nicknames: %w", err)
		}
		staged.nicknames = &nn
		read++
	}

	idx.mu.Lock()
	idx.t = staged
	idx.loaded = true
	idx.mu.Unlock()
	slog.Debug("asset index loaded", "lang", idx.tag, "tables", read)
	return nil
}

// readTable reads a table file after checking it against [AllowedPaths].
func (idx *Index) readTable(path string) ([]byte, error) {
	rel, err := filepath.Rel(idx.dir.Root, path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)
	allowed := false
	for _, pattern := range AllowedPaths {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("table path %q is outside the index", rel)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, rel)
		}
		return nil, err
	}
	return data, nil
}

// Unload drops every table at once.
func (idx *Index) Unload() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.t = tables{}
	idx.loaded = false
}

// ///////////////////////////////////////////////
// Accessors
// ///////////////////////////////////////////////

// lookup reads id from the table selected by pick.
func lookup[T any](idx *Index, table string, pick func(*tables) map[string]T, id string) (T, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var zero T
	if !idx.loaded {
		return zero, ErrNotLoaded
	}
	v, ok := pick(&idx.t)[id]
	if !ok {
		return zero, &MissingEntryError{Table: table, ID: id}
	}
	return v, nil
}

// Character returns the character with id.
func (idx *Index) Character(id string) (CharacterMeta, error) {
	return lookup(idx, TableCharacters, func(t *tables) map[string]CharacterMeta { return t.characters }, id)
}

// Eidolon returns the eidolon with id.
func (idx *Index) Eidolon(id string) (EidolonMeta, error) {
	return lookup(idx, TableEidolons, func(t *tables) map[string]EidolonMeta { return t.eidolons }, id)
}

// Skill returns the skill with id.
func (idx *Index) Skill(id string) (SkillMeta, error) {
	return lookup(idx, TableSkills, func(t *tables) map[string]SkillMeta { return t.skills }, id)
}

// Trace returns the trace node with id.
func (idx *Index) Trace(id string) (TraceMeta, error) {
	return lookup(idx, TableTraces, func(t *tables) map[string]TraceMeta { return t.traces }, id)
}

// LightCone returns the light cone with id.
func (idx *Index) LightCone(id string) (LightConeMeta, error) {
	return lookup(idx, TableLightCones, func(t *tables) map[string]LightConeMeta { return t.lightCones }, id)
}

// Relic returns the relic with id.
func (idx *Index) Relic(id string) (RelicMeta, error) {
	return lookup(idx, TableRelics, func(t *tables) map[string]RelicMeta { return t.relics }, id)
}

// RelicSet returns the relic set with id.
func (idx *Index) RelicSet(id string) (RelicSetMeta, error) {
	return lookup(idx, TableRelicSets, func(t *tables) map[string]RelicSetMeta { return t.relicSets }, id)
}

// Path returns the path with id ("Knight", "Rogue", ...).
func (idx *Index) Path(id string) (PathMeta, error) {
	return lookup(idx, TablePaths, func(t *tables) map[string]PathMeta { return t.paths }, id)
}

// Element returns the element with id ("Fire", "Thunder", ...).
func (idx *Index) Element(id string) (ElementMeta, error) {
	return lookup(idx, TableElements, func(t *tables) map[string]ElementMeta { return t.elements }, id)
}

// Property returns the property with the given type ("HPDelta", ...).
func (idx *Index) Property(typ string) (PropertyMeta, error) {
	return lookup(idx, TableProperties, func(t *tables) map[string]PropertyMeta { return t.properties }, typ)
}

// PropertyByField returns the first property whose field matches, preferring
// the lowest order.
func (idx *Index) PropertyByField(field string) (PropertyMeta, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if !idx.loaded {
		return PropertyMeta{}, ErrNotLoaded
	}
	var (
		best  PropertyMeta
		found bool
	)
	for _, p := range idx.t.properties {
		if p.Field == field && (!found || p.Order < best.Order) {
			best, found = p, true
		}
	}
	if !found {
		return PropertyMeta{}, &MissingEntryError{Table: TableProperties, ID: field}
	}
	return best, nil
}

// Description returns the description with id.
func (idx *Index) Description(id string) (DescriptionMeta, error) {
	return lookup(idx, TableDescriptions, func(t *tables) map[string]DescriptionMeta { return t.descriptions }, id)
}

// Curio returns the simulated universe curio with id.
func (idx *Index) Curio(id string) (CurioMeta, error) {
	return lookup(idx, TableCurios, func(t *tables) map[string]CurioMeta { return t.curios }, id)
}

// Blessing returns the simulated universe blessing with id.
func (idx *Index) Blessing(id string) (BlessingMeta, error) {
	return lookup(idx, TableBlessings, func(t *tables) map[string]BlessingMeta { return t.blessings }, id)
}

// BlessingType returns the blessing path with id.
func (idx *Index) BlessingType(id string) (BlessingTypeMeta, error) {
	return lookup(idx, TableBlessingTypes, func(t *tables) map[string]BlessingTypeMeta { return t.blessingTypes }, id)
}

// LocustBlock returns the swarm disaster domain block with id.
func (idx *Index) LocustBlock(id string) (LocustBlockMeta, error) {
	return lookup(idx, TableLocustBlocks, func(t *tables) map[string]LocustBlockMeta { return t.locustBlocks }, id)
}

// Nicknames returns the nickname table.
func (idx *Index) Nicknames() (*Nicknames, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if !idx.loaded {
		return nil, ErrNotLoaded
	}
	return idx.t.nicknames, nil
}
