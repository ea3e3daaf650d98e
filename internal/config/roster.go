package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"inquiry-dashboard/internal/models"
)

type rosterFile struct {
	Agents []string `toml:"agents"`
}

// LoadRoster returns the default roster, with the agent list replaced by the
// one in path when path is set.
//
//	agents = ["Abdallah", "Azam"]
func LoadRoster(path string) (models.Roster, error) {
	roster := models.DefaultRoster()
	if path == "" {
		return roster, nil
	}

	var f rosterFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return models.Roster{}, fmt.Errorf("reading roster %s: %w", path, err)
	}

	seen := map[string]bool{}
	agents := make([]string, 0, len(f.Agents))
	for _, a := range f.Agents {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		agents = append(agents, a)
	}
	if len(agents) == 0 {
		return models.Roster{}, fmt.Errorf("roster %s lists no agents", path)
	}
	roster.Agents = agents
	return roster, nil
}
