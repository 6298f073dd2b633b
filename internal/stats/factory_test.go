package stats_test

import (
	"testing"

	"shoplist/internal/config"
	"shoplist/internal/stats"
)

func TestNewIndexFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("sqlite index", func(t *testing.T) {
		cfg := config.StatsConfig{Type: "sqlite", DataDir: t.TempDir()}
		got, err := stats.NewIndexFromConfig(cfg)

		if err != nil {
			t.Fatalf("NewIndexFromConfig() error = %v", err)
		}
		if got == nil {
			t.Fatal("NewIndexFromConfig() returned nil index")
		}
		got.Close()
	})

	t.Run("sqlite index without data_dir", func(t *testing.T) {
		cfg := config.StatsConfig{Type: "sqlite"}
		got, err := stats.NewIndexFromConfig(cfg)

		if err == nil {
			t.Error("NewIndexFromConfig() expected error for missing data_dir, got nil")
		}
		if got != nil {
			t.Error("NewIndexFromConfig() should return nil on error")
			got.Close()
		}
	})

	t.Run("memory index", func(t *testing.T) {
		got, err := stats.NewIndexFromConfig(config.StatsConfig{Type: "memory"})

		if err != nil {
			t.Fatalf("NewIndexFromConfig() error = %v", err)
		}
		if got == nil {
			t.Fatal("NewIndexFromConfig() returned nil index")
		}
		got.Close()
	})

	t.Run("off returns nil index", func(t *testing.T) {
		got, err := stats.NewIndexFromConfig(config.StatsConfig{Type: "off"})

		if err != nil {
			t.Fatalf("NewIndexFromConfig() error = %v", err)
		}
		if got != nil {
			t.Error("NewIndexFromConfig() with type off should return nil index")
			got.Close()
		}
	})

	t.Run("unknown stats type", func(t *testing.T) {
		got, err := stats.NewIndexFromConfig(config.StatsConfig{Type: "mongo"})

		if err == nil {
			t.Error("NewIndexFromConfig() expected error for unknown type, got nil")
		}
		if got != nil {
			got.Close()
		}
	})
}
