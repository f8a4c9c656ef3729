package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

type SaveBackend string

const (
	SaveBackendFile   SaveBackend = "file"
	SaveBackendSQLite SaveBackend = "sqlite"
)

type Config struct {
	Journey JourneyConfig `yaml:"journey" json:"journey"`
	Travel  TravelConfig  `yaml:"travel" json:"travel"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Saves   SavesConfig   `yaml:"saves" json:"saves"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

type JourneyConfig struct {
	StartingMoney uint32     `yaml:"starting_money" json:"starting_money"`
	WagonCapacity float64    `yaml:"wagon_capacity" json:"wagon_capacity"`
	StartLocation string     `yaml:"start_location" json:"start_location"`
	StartDate     trail.Date `yaml:"start_date" json:"start_date"`
}

type TravelConfig struct {
	FoodPerPersonPerDay float64            `yaml:"food_per_person_per_day" json:"food_per_person_per_day"`
	MilesPerDay         float64            `yaml:"miles_per_day" json:"miles_per_day"`
	PaceMultipliers     map[string]float64 `yaml:"pace_multipliers" json:"pace_multipliers"`
	RationFactors       map[string]float64 `yaml:"ration_factors" json:"ration_factors"`
	// DiseaseChance is the daily chance per member of falling ill at the
	// harshest pace and rations; gentler settings scale it down.
	DiseaseChance    float64 `yaml:"disease_chance" json:"disease_chance"`
	TrailLengthMiles float64 `yaml:"trail_length_miles" json:"trail_length_miles"`
	Seed             int64   `yaml:"seed" json:"seed"`
}

type StoreConfig struct {
	MarkupPercent uint32 `yaml:"markup_percent" json:"markup_percent"`
}

type SavesConfig struct {
	Backend SaveBackend `yaml:"backend" json:"backend"`
	Path    string      `yaml:"path" json:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (j *JourneyConfig) ApplyDefaults() {
	if j.StartingMoney == 0 {
		j.StartingMoney = trail.DefaultStartingMoney
	}
	if j.WagonCapacity == 0 {
		j.WagonCapacity = trail.DefaultWagonCapacity
	}
	if strings.TrimSpace(j.StartLocation) == "" {
		j.StartLocation = trail.DefaultStartLocation
	}
	if j.StartDate.IsZero() {
		j.StartDate = trail.DefaultStartDate
	}
}

func (t *TravelConfig) ApplyDefaults() {
	if t.FoodPerPersonPerDay == 0 {
		t.FoodPerPersonPerDay = trail.FoodPerPersonPerDay
	}
	if t.MilesPerDay == 0 {
		t.MilesPerDay = trail.MilesPerDayNormalPace
	}
	defaults := map[string]float64{
		trail.PaceSteady.String():    1.0,
		trail.PaceStrenuous.String(): 1.5,
		trail.PaceGrueling.String():  2.0,
		trail.PaceResting.String():   0,
	}
	if t.PaceMultipliers == nil {
		t.PaceMultipliers = map[string]float64{}
	}
	for k, v := range defaults {
		if _, ok := t.PaceMultipliers[k]; !ok {
			t.PaceMultipliers[k] = v
		}
	}
	rations := map[string]float64{
		trail.RationsFilling.String():   1.0,
		trail.RationsMeager.String():    0.75,
		trail.RationsBareBones.String(): 0.5,
	}
	if t.RationFactors == nil {
		t.RationFactors = map[string]float64{}
	}
	for k, v := range rations {
		if _, ok := t.RationFactors[k]; !ok {
			t.RationFactors[k] = v
		}
	}
	if t.DiseaseChance == 0 {
		t.DiseaseChance = 0.04
	}
	if t.TrailLengthMiles == 0 {
		t.TrailLengthMiles = 2000
	}
}

func (s *SavesConfig) ApplyDefaults() {
	if s.Backend == "" {
		s.Backend = SaveBackendFile
	}
	if strings.TrimSpace(s.Path) == "" {
		switch s.Backend {
		case SaveBackendSQLite:
			s.Path = "wagon-trail-saves.db"
		default:
			s.Path = "wagon-trail-saves.json"
		}
	}
}

func (s *ServerConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = ":8080"
	}
}

func (c *Config) ApplyDefaults() {
	c.Journey.ApplyDefaults()
	c.Travel.ApplyDefaults()
	c.Saves.ApplyDefaults()
	c.Server.ApplyDefaults()
}

func (c *Config) Validate() error {
	if c.Journey.WagonCapacity <= 0 {
		return fmt.Errorf("wagon capacity must be positive, got %.1f", c.Journey.WagonCapacity)
	}
	d := c.Journey.StartDate
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > trail.DaysInMonth(d.Month, d.Year) {
		return fmt.Errorf("invalid start date: %d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	if c.Travel.FoodPerPersonPerDay < 0 || c.Travel.MilesPerDay < 0 {
		return fmt.Errorf("travel rates must not be negative")
	}
	for k, v := range c.Travel.PaceMultipliers {
		if _, ok := trail.ParsePace(k); !ok {
			return fmt.Errorf("unknown pace in pace_multipliers: %s", k)
		}
		if v < 0 {
			return fmt.Errorf("pace multiplier for %s must not be negative", k)
		}
	}
	for k, v := range c.Travel.RationFactors {
		if _, ok := trail.ParseRations(k); !ok {
			return fmt.Errorf("unknown rations in ration_factors: %s", k)
		}
		if v < 0 {
			return fmt.Errorf("ration factor for %s must not be negative", k)
		}
	}
	if c.Travel.DiseaseChance < 0 || c.Travel.DiseaseChance > 1 {
		return fmt.Errorf("disease chance must be within [0, 1], got %.3f", c.Travel.DiseaseChance)
	}
	switch c.Saves.Backend {
	case SaveBackendFile, SaveBackendSQLite:
	default:
		return fmt.Errorf("invalid save backend: %s", c.Saves.Backend)
	}
	return nil
}

// Load reads a YAML rules file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

// NewJourney builds a journey from the configured starting conditions.
func (c *Config) NewJourney() *trail.JourneyState {
	return trail.NewJourneyStateWith(c.Journey.StartingMoney, c.Journey.WagonCapacity, c.Journey.StartLocation, c.Journey.StartDate)
}
