package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"parkcore/pkg/domain"
)

// Seed describes zones and residents created at startup.
type Seed struct {
	Zones []SeedZone `yaml:"zones" json:"zones"`
}

// SeedZone is one zone in a seed file. Closed zones are populated first and
// closed afterwards, so a seed can describe a quarantined enclosure.
type SeedZone struct {
	Name      string         `yaml:"name" json:"name"`
	Open      bool           `yaml:"open" json:"open"`
	Dinosaurs []SeedDinosaur `yaml:"dinosaurs" json:"dinosaurs"`
}

// SeedDinosaur is one resident in a seed file.
type SeedDinosaur struct {
	Name    string `yaml:"name" json:"name"`
	Species string `yaml:"species" json:"species"`
	Sick    bool   `yaml:"sick" json:"sick"`
}

// SeedReport counts what ApplySeed did.
type SeedReport struct {
	ZonesCreated      int `json:"zones_created"`
	DinosaursAdmitted int `json:"dinosaurs_admitted"`
	Skipped           int `json:"skipped"`
}

// DecodeSeed parses a YAML seed document, rejecting unknown fields.
func DecodeSeed(r io.Reader) (Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return Seed{}, nil
		}
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}

// LoadSeedFile reads a YAML seed from path.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeSeed(f)
}

// DemoSeed returns the built-in demo park. Every zone's residents are
// pairwise compatible under the default catalog.
func DemoSeed() Seed {
	return Seed{Zones: []SeedZone{
		{Name: "Ismaloya Mountains", Open: true, Dinosaurs: []SeedDinosaur{
			{Name: "Bucky", Species: "Triceratops"},
			{Name: "Brachio", Species: "Brachiosaurus"},
			{Name: "Para", Species: "Parasaurolophus", Sick: true},
			{Name: "Galli", Species: "Gallimimus"},
			{Name: "Stego", Species: "Stegosaurus"},
		}},
		{Name: "Western Ridge", Open: true, Dinosaurs: []SeedDinosaur{
			{Name: "Blue", Species: "Velociraptor"},
			{Name: "Horns", Species: "Triceratops"},
		}},
		{Name: "Eastern Ridge", Open: true, Dinosaurs: []SeedDinosaur{
			{Name: "Ducky", Species: "Triceratops"},
			{Name: "Apatos", Species: "Brachiosaurus"},
			{Name: "Diplo", Species: "Brachiosaurus"},
			{Name: "Pachy", Species: "Ankylosaurus"},
			{Name: "Compy", Species: "Compsognathus"},
		}},
		{Name: "Sorna Quarantine", Open: false, Dinosaurs: []SeedDinosaur{
			{Name: "Rexy", Species: "T-Rex", Sick: true},
		}},
	}}
}

// ApplySeed creates the seed's zones and admits its dinosaurs through the
// engine, so every invariant applies. Zones and dinosaurs that already exist
// are skipped, which makes reseeding a persistent store harmless.
func (s *Service) ApplySeed(ctx context.Context, seed Seed) (SeedReport, error) {
	var report SeedReport
	for _, z := range seed.Zones {
		created := true
		if _, _, err := s.CreateZone(ctx, z.Name, true); err != nil {
			if !errors.Is(err, domain.ErrZoneAlreadyExists) {
				return report, fmt.Errorf("seed zone %q: %w", z.Name, err)
			}
			created = false
			report.Skipped++
		} else {
			report.ZonesCreated++
		}
		for _, d := range z.Dinosaurs {
			_, _, err := s.AdmitDinosaur(ctx, z.Name, DinosaurSpec{Name: d.Name, Species: d.Species, IsSick: d.Sick})
			switch {
			case err == nil:
				report.DinosaursAdmitted++
			case errors.Is(err, domain.ErrDuplicateDinosaur), !created && errors.Is(err, domain.ErrZoneUnavailable):
				report.Skipped++
			default:
				return report, fmt.Errorf("seed dinosaur %q in %q: %w", d.Name, z.Name, err)
			}
		}
		if created && !z.Open {
			if _, _, err := s.ToggleZoneStatus(ctx, z.Name); err != nil {
				return report, fmt.Errorf("close seed zone %q: %w", z.Name, err)
			}
		}
	}
	s.logger.Info("seed applied", "zones_created", report.ZonesCreated, "dinosaurs_admitted", report.DinosaursAdmitted, "skipped", report.Skipped)
	return report, nil
}
