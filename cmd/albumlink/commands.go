package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <url>",
		Short: "Show which artist and album a page is about, without searching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(cmd, func(s *services) error {
				c, err := s.identify.Detect(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, map[string]any{"candidate": c})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(candidateRows(c)))
				return nil
			})
		},
	}
}

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "identify <url>",
		Short: "Detect the album on a page and find it in the catalog",
		Long: `Fetch a review or music page, work out which album it covers, and look
the album up in the Apple Music catalog.

Examples:
  albumlink identify https://pitchfork.com/reviews/albums/radiohead-ok-computer/
  albumlink identify --json https://example.com/review | jq .match.albumUrl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(cmd, func(s *services) error {
				out, err := s.identify.IdentifyURL(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				return ctx.printOutcome(cmd, out)
			})
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var artist, album string

	cmd := &cobra.Command{
		Use:   `search ["Artist - Album"]`,
		Short: "Search the catalog for an album by name",
		Long: `Search the catalog directly. Either pass a single "Artist - Album" query,
or use --artist and --album. A query without a dash is treated as an album
name.

Examples:
  albumlink search "The Beatles - Abbey Road"
  albumlink search --artist "Big Thief" --album "Dragon New Mountain"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && (artist != "" || album != "") {
				return fmt.Errorf("pass either a query or --artist/--album, not both")
			}
			return ctx.withServices(cmd, func(s *services) error {
				if len(args) == 1 {
					return ctx.printOutcome(cmd, s.identify.SearchQuery(cmd.Context(), args[0]))
				}
				return ctx.printOutcome(cmd, s.identify.Search(cmd.Context(), artist, album))
			})
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "Artist name")
	cmd.Flags().StringVar(&album, "album", "", "Album name")
	return cmd
}
