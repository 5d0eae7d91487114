package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type yamlZoneFile struct {
	Zone yamlZone `yaml:"zone"`
}

type yamlZone struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	StartRoom string     `yaml:"start_room"`
	ScriptDir string     `yaml:"script_dir"`
	Rooms     []yamlRoom `yaml:"rooms"`
}

type yamlRoom struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Cyberspace  bool        `yaml:"cyberspace"`
	Exits       []yamlExit  `yaml:"exits"`
	Spawns      []yamlSpawn `yaml:"spawns"`
}

type yamlExit struct {
	Direction string `yaml:"direction"`
	Target    string `yaml:"target"`
	Locked    bool   `yaml:"locked"`
}

type yamlSpawn struct {
	Template string `yaml:"template"`
	Count    int    `yaml:"count"`
}

// LoadZoneFromBytes parses and validates a zone from YAML bytes.
//
// Postcondition: Returns a validated Zone or a non-nil error.
func LoadZoneFromBytes(data []byte) (*Zone, error) {
	var file yamlZoneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zone YAML: %w", err)
	}
	yz := file.Zone
	zone := &Zone{
		ID:        yz.ID,
		Name:      yz.Name,
		StartRoom: yz.StartRoom,
		ScriptDir: yz.ScriptDir,
		Rooms:     make(map[string]*Room, len(yz.Rooms)),
	}
	for _, yr := range yz.Rooms {
		if _, dup := zone.Rooms[yr.ID]; dup {
			return nil, fmt.Errorf("zone %q: duplicate room %q", yz.ID, yr.ID)
		}
		room := &Room{
			ID:          yr.ID,
			ZoneID:      yz.ID,
			Title:       yr.Title,
			Description: strings.TrimSpace(yr.Description),
			Cyberspace:  yr.Cyberspace,
		}
		for _, ye := range yr.Exits {
			room.Exits = append(room.Exits, Exit{
				Direction:  ParseDirection(ye.Direction),
				TargetRoom: ye.Target,
				Locked:     ye.Locked,
			})
		}
		for _, ys := range yr.Spawns {
			room.Spawns = append(room.Spawns, Spawn{Template: ys.Template, Count: ys.Count})
		}
		zone.Rooms[room.ID] = room
	}
	if err := zone.Validate(); err != nil {
		return nil, fmt.Errorf("validating zone: %w", err)
	}
	return zone, nil
}

// LoadZonesFromDir loads every .yaml file in dir as a zone. A relative
// script_dir is resolved against dir.
//
// Postcondition: Returns all validated zones or the first error encountered.
func LoadZonesFromDir(dir string) ([]*Zone, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading zone directory %s: %w", dir, err)
	}
	var zones []*Zone
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading zone file %s: %w", name, err)
		}
		zone, err := LoadZoneFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading zone from %s: %w", name, err)
		}
		if zone.ScriptDir != "" && !filepath.IsAbs(zone.ScriptDir) {
			zone.ScriptDir = filepath.Join(dir, zone.ScriptDir)
		}
		zones = append(zones, zone)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("no zone files found in %s", dir)
	}
	return zones, nil
}
