package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/yola1107/yut/internal/conf"
	"github.com/yola1107/yut/internal/pkg/xlog"
)

var (
	Name    = "yut"
	Version = "v0.1.0"

	flagconf string // -c path
	bc       *conf.Bootstrap
	logger   *xlog.Logger
)

var rootCmd = &cobra.Command{
	Use:     Name,
	Short:   "Yut board game engine",
	Long:    "Yut: simulate games on n-sided boards and inspect board topology.",
	Version: Version,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := conf.Load(flagconf)
		if err != nil {
			return err
		}
		if logger, err = xlog.NewLogger(c.Log); err != nil {
			return err
		}
		log.SetLogger(logger)
		bc = c

		if flagconf != "" {
			w, err := conf.NewWatcher(flagconf, func(nc *conf.Bootstrap) {
				logger.SetLevel(nc.Log.Level)
			})
			if err != nil {
				return err
			}
			go func() {
				if err := w.Run(cmd.Context()); err != nil {
					log.Warnf("config watcher stopped. err=%v", err)
				}
			}()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagconf, "conf", "c", "", "config path, e.g. -c configs/config.yaml")
	rootCmd.AddCommand(CmdSim)
	rootCmd.AddCommand(CmdBoard)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
