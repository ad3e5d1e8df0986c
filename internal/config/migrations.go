package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/qingque-bot/qingque/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     2,
		Description: "move assets_dir and language into sections",
		Upgrade:     upgradeV2,
	})
}

// upgradeV2 moves the flat v1 keys into their sections:
//
//	assets_dir = "..."  ->  [assets] dir
//	language   = "..."  ->  [render] default_language
//
// Keys already present in the target section win over the legacy value.
func upgradeV2(data []byte) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode v1 config: %w", err)
	}

	moveKey(doc, "assets_dir", "assets", "dir")
	moveKey(doc, "language", "render", "default_language")
	doc["version"] = 2

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode v2 config: %w", err)
	}
	return buf.Bytes(), nil
}

// moveKey relocates doc[from] to doc[section][key].
func moveKey(doc map[string]any, from, section, key string) {
	v, ok := doc[from]
	if !ok {
		return
	}
	delete(doc, from)

	table, _ := doc[section].(map[string]any)
	if table == nil {
		table = map[string]any{}
		doc[section] = table
	}
	if _, exists := table[key]; !exists {
		table[key] = v
	}
}
