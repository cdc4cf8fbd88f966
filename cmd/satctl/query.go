package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mariavieira99/Satellites/internal/filter"
	"github.com/mariavieira99/Satellites/internal/satellite"
)

func newListCmd(opts *options) *cobra.Command {
	var sortKey, inclination, eccentricity string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List satellites matching a sort and filter selection",
		Long: `List up to 35 satellites, sorted ascending.

Inclination buckets: any, lt20, 20-60, 60-100, gt100
Eccentricity buckets: any, circular, low, medium, high

Examples:
  satctl list --sort inclination --inclination 20-60
  satctl list --eccentricity high --offline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := filter.ParseSelection(sortKey, inclination, eccentricity)
			if err != nil {
				return err
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			exec := a.executor(cmd.Context(), opts.offline)
			res := exec.ExecuteResult(cmd.Context(), sel)
			exec.Wait()

			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s query failed: %v\n", res.Source, res.Err)
			}
			return printSatellites(a.out, res.Satellites, opts.asJSON)
		},
	}

	cmd.Flags().StringVar(&sortKey, "sort", "name", "sort key: name, inclination or eccentricity")
	cmd.Flags().StringVar(&inclination, "inclination", "any", "inclination bucket")
	cmd.Flags().StringVar(&eccentricity, "eccentricity", "any", "eccentricity bucket")

	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <satellite-id>",
		Short: "Show one satellite by catalog number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid satellite id %q", args[0])
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sat, ok := a.executor(cmd.Context(), opts.offline).Lookup(cmd.Context(), id)
			if !ok {
				return fmt.Errorf("satellite %d not found", id)
			}
			return printSatellites(a.out, []satellite.Satellite{sat}, opts.asJSON)
		},
	}
}

func printSatellites(w io.Writer, sats []satellite.Satellite, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINCLINATION\tECCENTRICITY\tDATE")
	for _, s := range sats {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.7f\t%s\n", s.SatelliteID, s.Name, s.Inclination, s.Eccentricity, s.Date)
	}
	return tw.Flush()
}
