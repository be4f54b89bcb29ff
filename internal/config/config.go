// Package config provides Viper-based configuration loading for the arena.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// MatchConfig holds settings shared by every match the CLI plays.
type MatchConfig struct {
	// Format is what to play: "single", "tower" or "tournament".
	Format string `mapstructure:"format"`
	// Seed makes every draw reproducible. Zero selects an unseeded source.
	Seed uint64 `mapstructure:"seed"`
	// SpeciesFile overrides the built-in species table when set.
	SpeciesFile string `mapstructure:"species_file"`
	// ScriptDir is the directory of Lua policy scripts.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps the VM instructions of one script call.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// Trace prints every round event.
	Trace bool `mapstructure:"trace"`
}

// TeamConfig describes one configured team.
type TeamConfig struct {
	Name      string `mapstructure:"name"`
	Mode      string `mapstructure:"mode"`
	Criterion string `mapstructure:"criterion"`
	// Policy is one of the ai policy kinds.
	Policy string `mapstructure:"policy"`
	// Hook is the Lua function a "script" policy calls.
	Hook        string `mapstructure:"hook"`
	Composition []int  `mapstructure:"composition"`
	// RandomSize builds a random composition of that size when Composition is
	// empty; -1 draws the size as well.
	RandomSize int `mapstructure:"random_size"`
}

// TeamsConfig holds the two sides of a single match. Team1 is also the tower player.
type TeamsConfig struct {
	Team1 TeamConfig `mapstructure:"team1"`
	Team2 TeamConfig `mapstructure:"team2"`
}

// TowerConfig holds battle tower settings.
type TowerConfig struct {
	Opponents       int  `mapstructure:"opponents"`
	AvoidDuplicates bool `mapstructure:"avoid_duplicates"`
}

// TournamentConfig holds knockout bracket settings.
type TournamentConfig struct {
	// Bracket is a postfix bracket such as "A B + C +".
	Bracket   string `mapstructure:"bracket"`
	Mode      string `mapstructure:"mode"`
	Criterion string `mapstructure:"criterion"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Match      MatchConfig      `mapstructure:"match"`
	Teams      TeamsConfig      `mapstructure:"teams"`
	Tower      TowerConfig      `mapstructure:"tower"`
	Tournament TournamentConfig `mapstructure:"tournament"`
}

var (
	validModes      = map[string]bool{"stack": true, "queue": true, "ordered": true, "0": true, "1": true, "2": true}
	validCriteria   = map[string]bool{"": true, "none": true, "speed": true, "spd": true, "hp": true, "level": true, "lv": true, "defence": true, "defense": true, "def": true}
	validPolicies   = map[string]bool{"always_attack": true, "swap_on_super_effective": true, "random": true, "user_input": true, "script": true}
	validMatchTypes = map[string]bool{"single": true, "tower": true, "tournament": true}
)

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMatch(c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTeam("teams.team1", c.Teams.Team1, c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Match.Format == "single" {
		if err := validateTeam("teams.team2", c.Teams.Team2, c.Match); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Match.Format == "tower" {
		if c.Tower.Opponents < 1 {
			errs = append(errs, fmt.Sprintf("tower.opponents must be >= 1, got %d", c.Tower.Opponents))
		}
		// Tower opponents are generated but play with team2's policy.
		if !validPolicies[c.Teams.Team2.Policy] {
			errs = append(errs, fmt.Sprintf("teams.team2.policy must be one of [always_attack, swap_on_super_effective, random, user_input, script], got %q", c.Teams.Team2.Policy))
		}
		if c.Teams.Team2.Policy == "script" && c.Match.ScriptDir == "" {
			errs = append(errs, "teams.team2.policy script requires match.script_dir")
		}
	}
	if c.Match.Format == "tournament" {
		if err := validateTournament(c.Tournament); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	var errs []string
	if !validMatchTypes[m.Format] {
		errs = append(errs, fmt.Sprintf("match.format must be one of [single, tower, tournament], got %q", m.Format))
	}
	if m.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("match.instruction_limit must be >= 0, got %d", m.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTeam(key string, t TeamConfig, m MatchConfig) error {
	var errs []string
	if t.Name == "" {
		errs = append(errs, key+".name must not be empty")
	}
	mode := strings.ToLower(t.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("%s.mode must be one of [stack, queue, ordered], got %q", key, t.Mode))
	}
	if !validCriteria[strings.ToLower(t.Criterion)] {
		errs = append(errs, fmt.Sprintf("%s.criterion must be one of [speed, hp, level, defence], got %q", key, t.Criterion))
	}
	if (mode == "ordered" || mode == "2") && (t.Criterion == "" || strings.EqualFold(t.Criterion, "none")) {
		errs = append(errs, key+".criterion is required for ordered teams")
	}
	if !validPolicies[t.Policy] {
		errs = append(errs, fmt.Sprintf("%s.policy must be one of [always_attack, swap_on_super_effective, random, user_input, script], got %q", key, t.Policy))
	}
	if t.Policy == "script" && m.ScriptDir == "" {
		errs = append(errs, key+".policy script requires match.script_dir")
	}
	total := 0
	for _, n := range t.Composition {
		if n < 0 {
			errs = append(errs, key+".composition counts must not be negative")
			break
		}
		total += n
	}
	if total > 6 {
		errs = append(errs, fmt.Sprintf("%s.composition must hold at most 6 creatures, got %d", key, total))
	}
	if t.RandomSize < -1 || t.RandomSize > 6 {
		errs = append(errs, fmt.Sprintf("%s.random_size must be -1..6, got %d", key, t.RandomSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTournament(t TournamentConfig) error {
	var errs []string
	if strings.TrimSpace(t.Bracket) == "" {
		errs = append(errs, "tournament.bracket must not be empty")
	}
	mode := strings.ToLower(t.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("tournament.mode must be one of [stack, queue, ordered], got %q", t.Mode))
	}
	if !validCriteria[strings.ToLower(t.Criterion)] {
		errs = append(errs, fmt.Sprintf("tournament.criterion must be one of [speed, hp, level, defence], got %q", t.Criterion))
	}
	if (mode == "ordered" || mode == "2") && (t.Criterion == "" || strings.EqualFold(t.Criterion, "none")) {
		errs = append(errs, "tournament.criterion is required for ordered teams")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("match.format", "single")
	v.SetDefault("match.seed", 0)
	v.SetDefault("match.species_file", "")
	v.SetDefault("match.script_dir", "")
	v.SetDefault("match.instruction_limit", 100000)
	v.SetDefault("match.trace", false)

	for _, side := range []string{"team1", "team2"} {
		v.SetDefault("teams."+side+".name", side)
		v.SetDefault("teams."+side+".mode", "stack")
		v.SetDefault("teams."+side+".criterion", "")
		v.SetDefault("teams."+side+".policy", "always_attack")
		v.SetDefault("teams."+side+".hook", "choose_action")
		v.SetDefault("teams."+side+".random_size", -1)
	}

	v.SetDefault("tower.opponents", 5)
	v.SetDefault("tower.avoid_duplicates", false)

	v.SetDefault("tournament.mode", "stack")
	v.SetDefault("tournament.criterion", "")
}
