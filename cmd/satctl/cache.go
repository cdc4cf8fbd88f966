package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mariavieira99/Satellites/internal/satellite"
	"github.com/mariavieira99/Satellites/internal/tle"
)

// dateLayout matches the offset timestamps served by the API.
const dateLayout = "2006-01-02T15:04:05-07:00"

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|url>",
		Short: "Load three-line TLE text into the cache",
		Long: `Load three-line TLE text (name, line 1, line 2 per satellite) into the
local cache from a file or an http(s) URL. Records already cached are left
untouched.

Examples:
  satctl import stations.tle
  satctl import "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := readEntries(cmd.Context(), args[0], a.logger)
			if err != nil {
				return err
			}

			sats, skipped := fromEntries(entries, a.cfg.APIBaseURL, func(e tle.Entry, err error) {
				a.logger.Warn("skipping entry", "component", "satctl", "satellite_id", e.NORADID, "error", err)
			})

			inserted, err := a.cache.InsertAll(cmd.Context(), sats)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "parsed %d, inserted %d, already cached %d, skipped %d\n",
				len(entries), inserted, int64(len(sats))-inserted, skipped)
			return nil
		},
	}
}

func readEntries(ctx context.Context, source string, logger *slog.Logger) ([]tle.Entry, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return tle.NewFetcher(source, logger).Fetch(ctx)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := tle.Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	return entries, nil
}

// fromEntries converts parsed TLE entries into cacheable satellites. Entries
// whose element set fails validation are reported to skip and left out.
func fromEntries(entries []tle.Entry, baseURL string, skip func(tle.Entry, error)) ([]satellite.Satellite, int) {
	sats := make([]satellite.Satellite, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		sat, err := fromEntry(e, baseURL)
		if err == nil {
			err = tle.Check(sat.Line1, sat.Line2)
		}
		if err != nil {
			skip(e, err)
			skipped++
			continue
		}
		sats = append(sats, sat)
	}
	return sats, skipped
}

func fromEntry(e tle.Entry, baseURL string) (satellite.Satellite, error) {
	id, err := url.JoinPath(baseURL, "tle", strconv.Itoa(e.NORADID))
	if err != nil {
		return satellite.Satellite{}, err
	}
	return satellite.Normalize(satellite.RemoteRecord{
		ID:          id,
		SatelliteID: e.NORADID,
		Name:        e.Name,
		Date:        e.Epoch.UTC().Format(dateLayout),
		Line1:       e.Line1,
		Line2:       e.Line2,
		Type:        satellite.TypeTLE,
	})
}

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the local cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of cached satellites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.cache.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, n)
			return nil
		},
	})

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached satellite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the cache without --yes")
			}
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "removed %d satellites\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	cmd.AddCommand(clearCmd)

	return cmd
}
