package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"reblograffle/internal/app"
	"reblograffle/internal/config"
	"reblograffle/internal/storage"
	logx "reblograffle/pkg/logx"
)

func newHistoryCmd(env Env, cfgPath *string) *cobra.Command {
	var (
		limit    int
		jsonFlag bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded draws, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(env.Fs, *cfgPath).Load()
			if err != nil {
				return fmt.Errorf("load config %s: %w", *cfgPath, err)
			}
			st, err := app.OpenHistory(cfg, logx.NewConsole(cfg.Logging.Level))
			if errors.Is(err, storage.ErrDisabled) {
				return errors.New("no draw history: storage is not configured")
			}
			if err != nil {
				return err
			}
			defer st.Close()

			draws, err := st.ListDraws(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonFlag {
				enc := json.NewEncoder(env.Stdout)
				for _, d := range draws {
					if err := enc.Encode(d); err != nil {
						return err
					}
				}
				return nil
			}
			return printDraws(env, draws)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max draws to list (0 = all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print one JSON object per draw")
	return cmd
}

func printDraws(env Env, draws []storage.Draw) error {
	if len(draws) == 0 {
		fmt.Fprintln(env.Stdout, "no draws recorded")
		return nil
	}
	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tID\tRESULT\tENTRANTS\tWINNERS")
	for _, d := range draws {
		result := "ok"
		switch {
		case !d.OK:
			result = "failed"
		case d.DryRun:
			result = "dry-run"
		}
		names := make([]string, 0, len(d.Winners))
		for _, w := range d.Winners {
			names = append(names, w.Value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			d.At.Local().Format(time.DateTime), d.ID, result, d.Entrants, strings.Join(names, " "))
	}
	return tw.Flush()
}
