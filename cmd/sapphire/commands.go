package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sapphire-forecast/sapphire-go/internal/spool"
	"github.com/sapphire-forecast/sapphire-go/pkg/log"
	"github.com/sapphire-forecast/sapphire-go/pkg/record"
	"github.com/sapphire-forecast/sapphire-go/pkg/sapphire"
)

func newHealthCmd(a *app) *cobra.Command {
	var service string
	var ready bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the health of the API services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services := []sapphire.Service{sapphire.Preprocessing, sapphire.Postprocessing}
			if service != "" {
				svc, err := sapphire.LookupService(service)
				if err != nil {
					return err
				}
				services = []sapphire.Service{svc}
			}

			table := uitable.New()
			table.Separator = "  "
			ok := true
			for _, svc := range services {
				status, err := a.client.HealthStatus(cmd.Context(), svc)
				if err != nil {
					status = "unreachable: " + err.Error()
				}
				healthy := err == nil && status == "healthy"
				if ready {
					healthy = healthy && a.client.Ready(cmd.Context(), svc)
				}
				ok = ok && healthy
				table.AddRow(svc, status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			if !ok {
				return fmt.Errorf("one or more services are unhealthy")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "check only this service (preprocessing or postprocessing)")
	cmd.Flags().BoolVar(&ready, "ready", false, "also require the readiness check to pass")
	return cmd
}

func newReadCmd(a *app) *cobra.Command {
	var q sapphire.Query
	var start, end string
	var all bool

	cmd := &cobra.Command{
		Use:   "read <dataset>",
		Short: "Read records from a dataset and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sapphire.LookupDataset(args[0])
			if err != nil {
				return err
			}
			if q.Start, err = sapphire.ParseDate(start); err != nil {
				return err
			}
			if q.End, err = sapphire.ParseDate(end); err != nil {
				return err
			}

			var rows []record.Record
			if all {
				rows, err = a.client.ReadAll(cmd.Context(), ds, q)
			} else {
				rows, err = a.client.Read(cmd.Context(), ds, q)
			}
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []record.Record{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Horizon, "horizon", "", "horizon filter (day, pentad, decade, month, season, year)")
	f.StringVar(&q.Code, "code", "", "station code")
	f.StringVar(&q.Type, "type", "", "meteo type (T, P) or snow type (HS, ROF, SWE)")
	f.StringVar(&q.Model, "model", "", "forecast model for skill metrics (TFT, TiDE, TSMixer, LR, EM, NE)")
	f.StringVar(&start, "start", "", "start date, YYYY-MM-DD (inclusive)")
	f.StringVar(&end, "end", "", "end date, YYYY-MM-DD (inclusive)")
	f.IntVar(&q.Skip, "skip", 0, "records to skip")
	f.IntVar(&q.Limit, "limit", sapphire.DefaultLimit, "records per page")
	f.BoolVar(&all, "all", false, "follow pagination until the last page")
	return cmd
}

func newWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write <dataset> <file.csv|file.json>",
		Short: "Write records from a CSV or JSON file in batches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sapphire.LookupDataset(args[0])
			if err != nil {
				return err
			}
			records, err := record.ReadFile(args[1])
			if err != nil {
				return err
			}

			n, err := a.client.Write(cmd.Context(), ds, records)
			if err != nil {
				return err
			}
			a.logger.Info("write complete",
				log.String("dataset", ds.String()),
				log.String("file", args[1]),
				log.Int(log.KeyRecords, n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", n, ds)
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch <dataset> <dir>",
		Short: "Upload CSV and JSON files from a spool directory as they appear",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sapphire.LookupDataset(args[0])
			if err != nil {
				return err
			}
			w, err := spool.New(spool.Config{
				Dir:      args[1],
				Dataset:  ds,
				Debounce: a.cfg.Debounce,
			}, a.client, spool.WithLogger(a.logger))
			if err != nil {
				return err
			}

			if once {
				sum, err := w.Scan(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "posted %d files (%d records), %d failed, %d deferred, %d unchanged\n",
					sum.Posted, sum.Records, sum.Failed, sum.Deferred, sum.Skipped)
				if n := sum.Failed + sum.Deferred; n > 0 {
					return fmt.Errorf("%d files not posted", n)
				}
				return nil
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&a.cfg.Debounce, "debounce", a.cfg.Debounce, "quiet period after a file event before rescanning")
	cmd.Flags().BoolVar(&once, "once", false, "process pending files and exit")
	return cmd
}

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets served by the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := uitable.New()
			table.MaxColWidth = 80
			table.Separator = "  "
			table.AddRow("NAME", "SERVICE", "PATH", "FILTERS")
			for _, ds := range sapphire.Datasets() {
				table.AddRow(ds.Name, ds.Service, ds.Path(), strings.Join(ds.Filters(), ","))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
}

