package main

import (
	"fmt"
	"io"
	"os"

	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

type simulateOptions struct {
	turns      int
	format     string
	replayPath string
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one match between autopilots",
		Long: `Plays a match between the configured players, every seat using the
configured deck, and prints the result. The seed makes the match repeatable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.simulate(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.turns, "turns", sim.DefaultMaxTurns, "stop the match unfinished after this many turns")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format (text or yaml)")
	cmd.Flags().StringVar(&opts.replayPath, "replay", "", "write the recorded replay to this YAML file")
	return cmd
}

func (a *app) simulate(cmd *cobra.Command, opts *simulateOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	m := a.match()
	m.MaxTurns = opts.turns

	var recorder *game.ReplayRecorder
	if opts.replayPath != "" {
		recorder = game.NewReplayRecorder(a.logger)
		m.OnGame = func(g *game.Game) { recorder.StartRecording(g) }
	}

	res, err := sim.Play(cmd.Context(), m)
	if err != nil {
		return err
	}

	if recorder != nil {
		replay, _ := recorder.GetReplay(res.GameID)
		if err := writeReplay(opts.replayPath, replay); err != nil {
			return err
		}
		a.logger.Info("replay written",
			zap.String("path", opts.replayPath),
			zap.Int("state_count", replay.Size()),
		)
	}

	return printResult(cmd.OutOrStdout(), opts.format, res)
}

// match builds the simulated match described by the config.
func (a *app) match() sim.Match {
	seats := make([]sim.Seat, len(a.cfg.Match.Players))
	for i, name := range a.cfg.Match.Players {
		seats[i] = sim.Seat{Name: name, Deck: a.cfg.Match.Deck}
	}
	return sim.Match{
		Seats:        seats,
		StartingLife: a.cfg.Match.StartingLife,
		MaxHandSize:  a.cfg.Match.MaxHandSize,
		Seed:         a.cfg.Seed,
		Catalog:      a.catalog,
		Logger:       a.logger,
	}
}

func writeReplay(path string, replay *game.Replay) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create replay file: %w", err)
	}
	if err := replay.WriteYAML(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write replay: %w", err)
	}
	return f.Close()
}

type resultDoc struct {
	GameID   string        `yaml:"game_id"`
	Outcome  string        `yaml:"outcome"`
	Winner   string        `yaml:"winner,omitempty"`
	Turns    int           `yaml:"turns"`
	Actions  int           `yaml:"actions"`
	Checksum string        `yaml:"checksum"`
	Final    game.GameView `yaml:"final"`
}

func printResult(w io.Writer, format string, res sim.Result) error {
	outcome := "unfinished"
	if res.Complete {
		outcome = res.Outcome.String()
	}

	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resultDoc{
			GameID:   res.GameID,
			Outcome:  outcome,
			Winner:   res.Winner,
			Turns:    res.Turns,
			Actions:  res.Actions,
			Checksum: res.Checksum.Hash,
			Final:    res.Final,
		}); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "game %s: %s after %d turns and %d actions\n", res.GameID, outcome, res.Turns, res.Actions)
	if res.Winner != "" {
		fmt.Fprintf(w, "winner: %s\n", res.Winner)
	}
	for _, p := range res.Final.Players {
		status := ""
		if p.Lost {
			status = " (lost)"
		}
		fmt.Fprintf(w, "  %-12s life %3d%s\n", p.Name, p.Life, status)
	}
	fmt.Fprintf(w, "checksum: %s (v%d)\n", res.Checksum.Hash, res.Checksum.Version)
	return nil
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatText, formatYAML)
	}
}
