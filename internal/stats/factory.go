package stats

import (
	"fmt"
	"path/filepath"

	"shoplist/internal/config"
	"shoplist/internal/shop"
)

// NewIndexFromConfig creates a StatsIndex based on the stats config type.
// Type "off" returns nil: the service treats a nil index as reporting
// disabled.
func NewIndexFromConfig(cfg config.StatsConfig) (shop.StatsIndex, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite stats")
		}
		return Open(filepath.Join(cfg.DataDir, "stats.db"))
	case "memory":
		return Open(":memory:")
	case "off", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown stats type: %s", cfg.Type)
	}
}
