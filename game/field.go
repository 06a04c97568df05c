package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/lakeflow/config"
	"github.com/pthm-cable/lakeflow/gridio"
	"github.com/pthm-cable/lakeflow/systems"
)

// loadGrid reads the grid at path, or generates the configured synthetic
// lake when path is empty.
func loadGrid(cfg *config.Config, path string) (*gridio.Grid, error) {
	if path == "" {
		g, err := gridio.Synthetic(SyntheticConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("generating synthetic lake: %w", err)
		}
		slog.Info("synthetic lake generated",
			"rows", g.Rows(),
			"cols", g.Cols(),
			"wet", g.WetCount(),
			"seed", cfg.Synthetic.Seed,
		)
		return g, nil
	}

	g, err := gridio.Load(path, GridOptions(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.Field.FlipVertical {
		g.FlipVertical()
	}
	slog.Info("grid loaded",
		"path", path,
		"rows", g.Rows(),
		"cols", g.Cols(),
		"wet", g.WetCount(),
	)
	return g, nil
}

// SyntheticConfig maps the synthetic config section to the generator.
func SyntheticConfig(cfg *config.Config) gridio.SyntheticConfig {
	s := cfg.Synthetic
	return gridio.SyntheticConfig{
		Rows:           s.Rows,
		Cols:           s.Cols,
		Seed:           s.Seed,
		Gyres:          s.Gyres,
		Strength:       s.Strength,
		ShorelineNoise: s.ShorelineNoise,
		EddyNoise:      s.EddyNoise,
	}
}

// GridOptions maps the field config section to file decoding options.
func GridOptions(cfg *config.Config) gridio.Options {
	return gridio.Options{
		UVar:      cfg.Field.UVar,
		VVar:      cfg.Field.VVar,
		FillValue: cfg.Field.FillValue,
		MaxCells:  cfg.Field.MaxCells,
	}
}

// buildField constructs the vector field for grid in the given mode.
func buildField(grid *gridio.Grid, mode systems.Interpolation) (*systems.VectorField, error) {
	f, err := grid.Field(systems.WithInterpolation(mode))
	if err != nil {
		return nil, fmt.Errorf("building field: %w", err)
	}
	return f, nil
}
