package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sydlexius/albumlink/internal/detect"
	"github.com/sydlexius/albumlink/internal/identify"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// wantJSON reports whether output should be JSON: when asked for, or when
// stdout is not a terminal.
func (c *commandContext) wantJSON(cmd *cobra.Command) bool {
	if c.jsonFlag != nil && *c.jsonFlag {
		return true
	}
	return !isTerminal(cmd.OutOrStdout())
}

func candidateRows(c *detect.Candidate) [][2]string {
	if c == nil {
		return [][2]string{{"Detected", "nothing"}}
	}
	return [][2]string{
		{"Artist", c.Artist},
		{"Album", c.Album},
		{"Source", c.Source},
	}
}

func outcomeRows(out *identify.Outcome) [][2]string {
	var rows [][2]string
	if out.URL != "" {
		rows = append(rows, [2]string{"Page", out.URL})
	}
	if out.Candidate != nil {
		rows = append(rows,
			[2]string{"Detected", out.Candidate.Query()},
			[2]string{"Source", out.Candidate.Source})
	}
	if m := out.Match; m != nil {
		rows = append(rows,
			[2]string{"Album", m.AlbumName},
			[2]string{"Artist", m.ArtistName},
			[2]string{"Link", m.AlbumURL},
			[2]string{"Artwork", m.ArtworkURL})
	}
	if out.Error != "" {
		rows = append(rows,
			[2]string{"Error", out.Error},
			[2]string{"Try", out.ManualQuery})
	}
	return rows
}

// printOutcome writes out in the selected format. A failed lookup is
// reported as a command error after the output is written.
func (c *commandContext) printOutcome(cmd *cobra.Command, out *identify.Outcome) error {
	if c.wantJSON(cmd) {
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
	} else {
		if out.Candidate == nil && out.Match == nil && out.Error == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No album detected on this page.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(outcomeRows(out)))
	}
	if out.Error != "" {
		return fmt.Errorf("lookup failed (%s): %s", out.ErrorKind, out.Error)
	}
	return nil
}
