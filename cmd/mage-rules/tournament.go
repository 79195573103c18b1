package main

import (
	"fmt"
	"io"

	"github.com/magefree/mage-rules-go/internal/sim"
	"github.com/magefree/mage-rules-go/internal/tournament"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type tournamentOptions struct {
	name   string
	rounds int
	turns  int
	format string
}

func newTournamentCmd(a *app) *cobra.Command {
	opts := &tournamentOptions{}
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Run a Swiss event between autopilots",
		Long: `Runs a Swiss event between the configured entrants and prints the final
standings. Without entrants, the match players enter with the match deck.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tournament(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "Swiss", "event name")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 0, "number of rounds (defaults to tournament.rounds)")
	cmd.Flags().IntVar(&opts.turns, "turns", sim.DefaultMaxTurns, "turn limit per match; unfinished matches are draws")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format (text or yaml)")
	return cmd
}

func (a *app) tournament(cmd *cobra.Command, opts *tournamentOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	rounds := opts.rounds
	if rounds <= 0 {
		rounds = a.cfg.Tournament.Rounds
	}

	t := tournament.NewTournament(opts.name, rounds)
	if len(a.cfg.Tournament.Entrants) > 0 {
		for _, e := range a.cfg.Tournament.Entrants {
			if err := t.AddPlayer(e.Name, e.Deck); err != nil {
				return err
			}
		}
	} else {
		for _, name := range a.cfg.Match.Players {
			if err := t.AddPlayer(name, a.cfg.Match.Deck); err != nil {
				return err
			}
		}
	}

	template := a.match()
	template.Seats = nil
	template.MaxTurns = opts.turns
	runner := tournament.NewRunner(template, a.cfg.Seed, a.logger)
	if err := runner.Run(cmd.Context(), t); err != nil {
		return err
	}
	return printStandings(cmd.OutOrStdout(), opts.format, t.Snapshot())
}

func printStandings(w io.Writer, format string, snap tournament.TournamentSnapshot) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "%s: %d rounds, %s\n", snap.Name, snap.NumRounds, snap.State)
	for _, r := range snap.Rounds {
		fmt.Fprintf(w, "round %d\n", r.Number)
		for _, p := range r.Pairings {
			result := "draw"
			if p.Winner != "" {
				result = p.Winner + " wins"
			}
			fmt.Fprintf(w, "  %s vs %s: %s\n", p.Player1, p.Player2, result)
		}
		if r.Bye != "" {
			fmt.Fprintf(w, "  bye: %s\n", r.Bye)
		}
	}
	fmt.Fprintln(w, "standings")
	for i, s := range snap.Standings {
		fmt.Fprintf(w, "  %d. %-12s %2d pts  %d-%d-%d\n", i+1, s.Name, s.Points, s.Wins, s.Losses, s.Draws)
	}
	return nil
}
