package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"brd-tui/internal/brd"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func listCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no projects")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTEMPLATE\tUPDATED")
			for _, p := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Template, humanize.Time(p.UpdatedAt))
			}
			return tw.Flush()
		},
	}
}

func showCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a project's overview, record counts and reference findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.LoadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  [%s]  %s\n\n", p.Overview.ProjectName, p.Template, p.ID)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, f := range brd.OverviewSchema {
				if v := p.Overview.Get(f.Name); v != "" {
					fmt.Fprintf(tw, "%s\t%s\n", f.Label, oneLine(v))
				}
			}
			fmt.Fprintf(tw, "Created\t%s\n", p.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(tw, "Updated\t%s (%s)\n", p.UpdatedAt.Local().Format(time.DateTime), humanize.Time(p.UpdatedAt))
			fmt.Fprintln(tw, "\t")
			for _, k := range p.Kinds() {
				fmt.Fprintf(tw, "%s\t%d\n", k.Label(), p.Len(k))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			problems := p.CheckReferences()
			if p.MultiAgent != nil {
				f := p.MultiAgent.Review()
				for _, e := range f.Errors {
					problems = append(problems, "error: "+e)
				}
				for _, w := range f.Warnings {
					problems = append(problems, "warning: "+w)
				}
			}
			if len(problems) > 0 {
				fmt.Fprintln(out, "\nFindings:")
				for _, pr := range problems {
					fmt.Fprintf(out, "  - %s\n", pr)
				}
			}
			return nil
		},
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 80 {
		return string([]rune(s)[:79]) + "…"
	}
	return s
}

func exportCmd(g *globals) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a project to an .xlsx workbook and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.LoadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path, err := a.ExportProject(cmd.Context(), p, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", "", "output directory (default from config)")
	return cmd
}

func deleteCmd(g *globals) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.LoadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %q (%s)? [y/N] ", p.Overview.ProjectName, p.ID)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			if err := a.DeleteProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", p.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func dumpCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <id>",
		Short: "Print a project as a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.DumpJSON(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func importCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a JSON project document under a new id",
		Long:  "Read a document written by dump. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.ImportJSON(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s\n", p.Overview.ProjectName, p.ID)
			return nil
		},
	}
}

// printJSON writes v indented.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
