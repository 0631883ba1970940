package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dplyukhin/uigc/internal/snapshotstore"
)

// expandHome resolves a leading "~" in path to the current user's home
// directory, matching the convention the rest of this module's CLI and
// daemon entry points use for path flags.
func expandHome(path string) string {
	expanded := os.ExpandEnv(path)
	if expanded == path && len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("failed to get home directory: %v", err)
		}
		expanded = home + path[1:]
	}
	return expanded
}

// openStore opens the snapshot store at the configured --snapshot-db path.
func openStore() (*snapshotstore.Store, error) {
	path := expandHome(snapshotDBPath)
	store, err := snapshotstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store %q: %w", path, err)
	}
	return store, nil
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
