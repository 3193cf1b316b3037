package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/baseball-stats/internal/domain/playerstat"
	"github.com/riskibarqy/baseball-stats/internal/usecase"
)

func newRefreshCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the upstream batch and upsert it into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			result, err := container.Ingestion.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			return c.print(refreshOutput{Status: "success", PlayersSaved: result.SavedCount, RunID: result.RunID})
		},
	}
}

func newQueryCommand(c *cli) *cobra.Command {
	var input usecase.QueryInput
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List one page of player stats",
		Long: `
Lists stored player stats. --ordering takes a comma separated list of field
names, each optionally prefixed with "-" for descending order.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			result, err := container.PlayerStats.Query(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			return c.print(pageOutput{Results: result.Results, Total: result.Total})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input.Ordering, "ordering", "", "comma separated fields, e.g. -hits,player_name")
	flags.IntVar(&input.Page, "page", usecase.DefaultPage, "1-based page number")
	flags.IntVar(&input.PageSize, "page-size", usecase.DefaultPageSize, "records per page")
	return cmd
}

func newGetCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <player-id>",
		Short: "Print one player stat record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid player id %q", args[0])
			}
			container, err := c.load(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := container.PlayerStats.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			return c.print(rec)
		},
	}
}

type refreshOutput struct {
	Status       string `json:"status"`
	PlayersSaved int    `json:"players_saved"`
	RunID        string `json:"run_id"`
}

type pageOutput struct {
	Results []playerstat.Record `json:"results"`
	Total   int                 `json:"total"`
}
