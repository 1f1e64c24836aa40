package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"emergencyreport/internal/adapter/client"
	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/usecase"
	"emergencyreport/pkg/logger"
)

type options struct {
	server    string
	eventType string
	search    string
	out       string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Review submitted emergency reports",
		SilenceUsage: true,
	}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{Level: "warn", Pretty: true, Output: cmd.ErrOrStderr()})
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:3000", "API server base URL")

	root.AddCommand(newStatsCommand(opts), newListCommand(opts), newExportCommand(opts))
	return root
}

func addFilterFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.eventType, "type", "", "only reports of this event type")
	cmd.Flags().StringVar(&opts.search, "search", "", "case-insensitive match on description or reporter email")
}

func loadSession(cmd *cobra.Command, opts *options) (*usecase.DashboardSession, error) {
	if opts.eventType != "" && !entity.EventType(opts.eventType).Known() {
		logger.Warn("Unknown event type %q, known types: %s", opts.eventType, knownEventTypes())
	}
	session := usecase.NewDashboardSession(client.NewReportsClient(opts.server, nil))
	if err := session.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	session.ApplyFilter(usecase.ReportFilter{EventType: opts.eventType, Search: opts.search})
	return session, nil
}

func knownEventTypes() string {
	types := entity.EventTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func newStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show report totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd, opts)
			if err != nil {
				return err
			}
			stats := session.Stats(time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Total reports: %d\nToday:         %d\nThis week:     %d\n",
				stats.Total, stats.Today, stats.ThisWeek)
			return nil
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd, opts)
			if err != nil {
				return err
			}
			reports := session.Filtered()
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reports found")
				return nil
			}
			return printReports(cmd.OutOrStdout(), reports)
		},
	}
	addFilterFlags(cmd, opts)
	return cmd
}

func printReports(w io.Writer, reports []*entity.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSUBMITTED\tREPORTER\tLOCATION\tPICTURE\tDESCRIPTION")
	for _, r := range reports {
		picture := "-"
		if r.HasPicture() {
			picture = *r.Picture
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s,%s\t%s\t%s\n",
			r.ID,
			r.EventType.Label(),
			r.SubmittedAt.Local().Format("2006-01-02 15:04"),
			r.ReporterEmail,
			strconv.FormatFloat(r.Location.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Location.Longitude, 'f', -1, 64),
			picture,
			truncate(r.Description, 60),
		)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func newExportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered reports as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd, opts)
			if err != nil {
				return err
			}
			if len(session.Filtered()) == 0 {
				return usecase.ErrNothingToExport
			}

			out := opts.out
			if out == "" {
				out = fmt.Sprintf("emergency-reports-%d.csv", time.Now().UnixMilli())
			}
			if out == "-" {
				return session.Export(cmd.OutOrStdout())
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := session.Export(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d reports to %s\n", len(session.Filtered()), out)
			return nil
		},
	}
	addFilterFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.out, "out", "", `output file ("-" for stdout)`)
	return cmd
}
