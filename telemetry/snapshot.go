package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/lakeflow/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot records the population at one tick for offline inspection.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int   `json:"tick"`

	Rows          int    `json:"rows"`
	Cols          int    `json:"cols"`
	WetCells      int    `json:"wet_cells"`
	Interpolation string `json:"interpolation"`

	Config    systems.ParticleConfig `json:"particle_config"`
	Particles []ParticleState        `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState is one particle's trail, oldest point first.
type ParticleState struct {
	Age   int          `json:"age"`
	Trail [][2]float64 `json:"trail"`
}

// CaptureSnapshot copies the population's current state.
func CaptureSnapshot(flow *systems.FlowFieldSystem, tick int) *Snapshot {
	field := flow.Field()
	cfg := flow.Config()
	snap := &Snapshot{
		Version:       SnapshotVersion,
		Seed:          cfg.Seed,
		Tick:          tick,
		Rows:          field.Rows(),
		Cols:          field.Cols(),
		WetCells:      field.WetCount(),
		Interpolation: field.Interpolation().String(),
		Config:        cfg.Particle,
		Particles:     make([]ParticleState, flow.Len()),
	}

	var scratch []systems.Point
	for i := range flow.Particles {
		p := &flow.Particles[i]
		scratch = p.History(scratch[:0])
		trail := make([][2]float64, len(scratch))
		for j, pt := range scratch {
			trail[j] = [2]float64{pt.X, pt.Y}
		}
		snap.Particles[i] = ParticleState{Age: p.Age(), Trail: trail}
	}
	return snap
}

// SaveSnapshot writes a snapshot to dir and returns its path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
