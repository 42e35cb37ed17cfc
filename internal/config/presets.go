package config

import "sort"

var Presets = map[string]*Config{
	"small": {
		Graph: GraphConfig{TileSize: Size{X: 20, Y: 20}, GridSize: Size{X: 12, Y: 12}, StepsPerSecond: 10},
	},
	"default": {
		Graph: DefaultGraphConfig(),
	},
	"large": {
		Graph: GraphConfig{TileSize: Size{X: 4, Y: 4}, GridSize: Size{X: 160, Y: 120}, StepsPerSecond: 500},
	},
	"fast": {
		Graph: GraphConfig{TileSize: Size{X: 10, Y: 10}, GridSize: Size{X: 60, Y: 60}, StepsPerSecond: MaxStepsPerSecond},
	},
	"slow": {
		Graph: GraphConfig{TileSize: Size{X: 10, Y: 10}, GridSize: Size{X: 20, Y: 20}, StepsPerSecond: 2},
	},
	"bfs": {
		Graph:  GraphConfig{TileSize: Size{X: 10, Y: 10}, GridSize: Size{X: 40, Y: 40}, StepsPerSecond: 120},
		Search: SearchConfig{Algorithm: "bfs"},
	},
}

// GetPreset returns a full config with the named preset applied over the defaults,
// or nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Graph = p.Graph
	if p.Search.Algorithm != "" {
		cfg.Search.Algorithm = p.Search.Algorithm
	}
	if p.Search.Neighbours != "" {
		cfg.Search.Neighbours = p.Search.Neighbours
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
