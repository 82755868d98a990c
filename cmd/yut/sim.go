package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"

	"github.com/yola1107/yut/internal/biz/game"
	"github.com/yola1107/yut/internal/biz/room"
	"github.com/yola1107/yut/internal/conf"
	"github.com/yola1107/yut/internal/model"
)

var (
	simGames    int
	simPlayers  int
	simParallel int
	simTimeout  time.Duration
)

// CmdSim 无人值守地跑若干局
var CmdSim = &cobra.Command{
	Use:   "sim",
	Short: "Run headless games with default responses",
	Long: heredoc.Doc(`
		sim runs N games concurrently. Every request is answered with its
		default: the first candidate, the original throw order, or an ack.
		In manual throw mode the dice are thrown on the player's behalf.

		Winners, turn counts and metric totals are printed when all games
		are over.`),
	Example: heredoc.Doc(`
		yut sim -c configs/config.yaml -n 10 -p 3 --parallel 4`),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSim(cmd, bc)
	},
}

func init() {
	CmdSim.Flags().IntVarP(&simGames, "games", "n", 1, "number of games")
	CmdSim.Flags().IntVarP(&simPlayers, "players", "p", 2, "players per game")
	CmdSim.Flags().IntVar(&simParallel, "parallel", 4, "games run at the same time")
	CmdSim.Flags().DurationVar(&simTimeout, "timeout", 5*time.Minute, "deadline for the whole run")
}

type simResult struct {
	index  int
	id     string
	winner string
	turns  int
}

func runSim(cmd *cobra.Command, c *conf.Bootstrap) error {
	if simGames <= 0 || simPlayers < game.MinPlayers || simParallel <= 0 {
		return fmt.Errorf("invalid flags: games=%d players=%d parallel=%d", simGames, simPlayers, simParallel)
	}
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	meter := provider.Meter(Name)

	players := make([]string, simPlayers)
	for i := range players {
		players[i] = fmt.Sprintf("p%d", i)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), simTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results []simResult
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(simParallel)
	for i := 0; i < simGames; i++ {
		i := i
		eg.Go(func() error {
			gc := c.Clone()
			if gc.Game.Seed != 0 {
				gc.Game.Seed += int64(i)
			}
			s, err := room.NewSession(gc, players, game.WithMeter(meter))
			if err != nil {
				return err
			}
			if err := s.Start(ctx); err != nil {
				return err
			}
			defer s.Close()

			responder := room.NewResponder(nil)
			if gc.Game.IsManual() {
				responder = room.NewResponder(model.NewStickThrower(gc.Game.Seed))
			}
			winner, err := room.Autoplay(ctx, s, responder, nil)
			if err != nil {
				return err
			}
			r := simResult{index: i, id: s.Game().ID(), turns: s.Game().Turn()}
			if winner >= 0 {
				r.winner = players[winner]
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			log.Infof("[Sim] game %d done. id=%s winner=%s turns=%d", i, r.id, r.winner, r.turns)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tID\tWINNER\tTURNS")
	wins := make(map[string]int)
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", r.index, r.id, r.winner, r.turns)
		wins[r.winner]++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, p := range players {
		fmt.Fprintf(out, "%s wins: %d\n", p, wins[p])
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		return err
	}
	totals := metricTotals(rm)
	names := lo.Keys(totals)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s = %d\n", name, totals[name])
	}
	return nil
}

// metricTotals 各计数器所有数据点之和
func metricTotals(rm metricdata.ResourceMetrics) map[string]int64 {
	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	return totals
}
