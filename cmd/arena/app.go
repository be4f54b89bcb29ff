package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/team"
	"github.com/cory-johannsen/arena/internal/game/tournament"
	"github.com/cory-johannsen/arena/internal/game/tower"
	"github.com/cory-johannsen/arena/internal/scripting"
)

// policyVM is the scripting VM holding every policy script.
const policyVM = "policies"

// app wires the configured collaborators together for one invocation.
type app struct {
	cfg      config.Config
	roller   *dice.Roller
	registry *creature.Registry
	scripts  *scripting.Manager
	battle   *combat.Battle
	prompt   *ai.Prompt
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
}

// run builds the app from cfg and plays the configured format.
//
// Precondition: cfg must have passed Validate.
// Postcondition: results are written to out; returns the first error met.
func run(cfg config.Config, in io.Reader, out io.Writer, logger *zap.Logger) error {
	a, err := newApp(cfg, in, out, logger)
	if err != nil {
		return err
	}
	defer a.close()

	switch cfg.Match.Format {
	case "tower":
		return a.runTower()
	case "tournament":
		return a.runTournament()
	default:
		return a.runSingle()
	}
}

func newApp(cfg config.Config, in io.Reader, out io.Writer, logger *zap.Logger) (*app, error) {
	var src dice.Source
	if cfg.Match.Seed != 0 {
		src = dice.NewSeededSource(cfg.Match.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	registry := creature.DefaultRegistry()
	if cfg.Match.SpeciesFile != "" {
		reg, err := creature.LoadFile(cfg.Match.SpeciesFile)
		if err != nil {
			return nil, fmt.Errorf("loading species: %w", err)
		}
		registry = reg
		logger.Info("species loaded", zap.String("file", cfg.Match.SpeciesFile), zap.Int("roster", len(reg.Roster())))
	}

	a := &app{
		cfg:      cfg,
		roller:   roller,
		registry: registry,
		battle:   combat.NewBattle(roller, logger),
		in:       in,
		out:      out,
		logger:   logger,
	}
	if cfg.Match.ScriptDir != "" {
		a.scripts = scripting.NewManager(roller, logger)
		if err := a.scripts.LoadScript(policyVM, cfg.Match.ScriptDir, cfg.Match.InstructionLimit); err != nil {
			a.scripts.Close()
			return nil, fmt.Errorf("loading policy scripts: %w", err)
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.scripts != nil {
		a.scripts.Close()
	}
}

// policy builds the action policy named by tc.
func (a *app) policy(tc config.TeamConfig) (ai.Policy, error) {
	kind, err := ai.ParseKind(tc.Policy)
	if err != nil {
		return nil, err
	}
	// Every interactive team reads from the same prompt so input is not split
	// between two buffered readers.
	if kind == ai.KindUserInput {
		if a.prompt == nil {
			a.prompt = ai.NewPrompt(a.in, a.out)
		}
		return a.prompt, nil
	}
	deps := ai.Deps{Source: a.roller, Input: a.in, Output: a.out, VM: policyVM, Hook: tc.Hook}
	if a.scripts != nil {
		deps.Scripts = a.scripts
	}
	return ai.New(kind, deps)
}

// team builds the team described by tc. An empty composition with a non-zero
// random size yields a random team.
func (a *app) team(tc config.TeamConfig) (*team.Team, error) {
	mode, err := team.ParseMode(tc.Mode)
	if err != nil {
		return nil, err
	}
	crit, err := team.ParseCriterion(tc.Criterion)
	if err != nil {
		return nil, err
	}
	policy, err := a.policy(tc)
	if err != nil {
		return nil, fmt.Errorf("team %q: %w", tc.Name, err)
	}
	if len(tc.Composition) == 0 && tc.RandomSize != 0 {
		return team.Random(team.RandomOptions{
			Name:      tc.Name,
			Mode:      mode,
			Criterion: crit,
			Size:      max(tc.RandomSize, 0),
		}, a.roller, a.registry, policy)
	}
	return team.New(team.Config{Name: tc.Name, Mode: mode, Criterion: crit, Composition: tc.Composition}, a.registry, policy)
}

func (a *app) runSingle() error {
	t1, err := a.team(a.cfg.Teams.Team1)
	if err != nil {
		return err
	}
	t2, err := a.team(a.cfg.Teams.Team2)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, t1)
	fmt.Fprintln(a.out, t2)

	res, err := a.battle.Run(t1, t2)
	if err != nil {
		return err
	}
	a.report(t1.Name(), t2.Name(), res)
	return nil
}

func (a *app) runTower() error {
	player, err := a.team(a.cfg.Teams.Team1)
	if err != nil {
		return err
	}
	opponents, err := a.policy(a.cfg.Teams.Team2)
	if err != nil {
		return fmt.Errorf("tower opponents: %w", err)
	}
	tw := tower.New(a.battle, a.roller, a.registry, opponents, a.logger)
	if err := tw.Generate(a.cfg.Tower.Opponents); err != nil {
		return err
	}
	if a.cfg.Tower.AvoidDuplicates {
		tw.AvoidDuplicates()
	}
	tw.SetPlayer(player)

	wins := 0
	for {
		b, ok, err := tw.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if b.Result.Outcome == combat.Team1Wins {
			wins++
		}
		a.report(b.Player.Name(), b.Opponent.Name(), b.Result)
		fmt.Fprintf(a.out, "  %s has %d lives left\n", b.Opponent.Name(), b.Lives)
	}
	if tw.Len() == 0 {
		fmt.Fprintf(a.out, "%s cleared the tower with %d wins\n", player.Name(), wins)
	} else {
		fmt.Fprintf(a.out, "%s fell with %d wins; %d opponents remain\n", player.Name(), wins, tw.Len())
	}
	return nil
}

func (a *app) runTournament() error {
	mode, err := team.ParseMode(a.cfg.Tournament.Mode)
	if err != nil {
		return err
	}
	crit, err := team.ParseCriterion(a.cfg.Tournament.Criterion)
	if err != nil {
		return err
	}
	policy, err := a.policy(a.cfg.Teams.Team1)
	if err != nil {
		return fmt.Errorf("tournament teams: %w", err)
	}
	tr := tournament.New(a.battle, a.roller, a.registry, policy, tournament.Options{Mode: mode, Criterion: crit}, a.logger)
	if err := tr.Start(a.cfg.Tournament.Bracket); err != nil {
		return err
	}
	games, err := tr.Games()
	if err != nil {
		return err
	}
	for _, g := range games {
		a.report(g.Team1.Name(), g.Team2.Name(), g.Result)
		fmt.Fprintf(a.out, "  %s advances", g.Winner.Name())
		if len(g.Metas) > 0 {
			fmt.Fprintf(a.out, " (metas: %v)", g.Metas)
		}
		fmt.Fprintln(a.out)
	}
	if w, ok := tr.Winner(); ok {
		fmt.Fprintf(a.out, "champion: %s\n", w.Name())
	}
	return nil
}

// report prints one match result, preceded by its events when tracing.
func (a *app) report(name1, name2 string, res combat.Result) {
	if a.cfg.Match.Trace {
		for _, ev := range res.Events {
			fmt.Fprintf(a.out, "[round %d] %s\n", ev.Round, ev.Narrative)
		}
	}
	fmt.Fprintf(a.out, "%s vs %s: %s after %d rounds\n", name1, name2, res.Outcome, res.Rounds)
}
