package main

import (
	"fmt"
	"strings"

	"brd-tui/internal/brd"
	"brd-tui/internal/suggest"

	"github.com/spf13/cobra"
)

func probeCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the Ollama gateway and list its models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Probe(cmd.Context())
			if asJSON {
				return printJSON(cmd, st)
			}
			out := cmd.OutOrStdout()
			if !st.Reachable {
				fmt.Fprintf(out, "%s: unreachable (%s)\n", st.BaseURL, st.Error)
				return fmt.Errorf("gateway unreachable")
			}
			fmt.Fprintf(out, "%s: reachable\n", st.BaseURL)
			for _, m := range st.Models {
				marker := " "
				if brd.ModelName(m).Valid() {
					marker = "*"
				}
				fmt.Fprintf(out, " %s %s\n", marker, m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func suggestCmd(g *globals) *cobra.Command {
	var (
		model       string
		temperature float64
	)
	cmd := &cobra.Command{
		Use:   "suggest <kind> <hint...>",
		Short: "Ask the gateway to draft a record and print it as JSON",
		Long: `Kinds accept the section key or label, e.g. ui_specs, "API Specification", agent_tasks.

Examples:
  brd-tui suggest ui_specs login screen with remember-me
  brd-tui suggest api_specs --model mistral create order endpoint`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := brd.ParseKind(args[0])
			if err != nil {
				return err
			}
			if model != "" && !brd.ModelName(model).Valid() {
				return fmt.Errorf("unknown model %q", model)
			}

			a, err := openApp(cmd.Context(), g, g.verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Suggest(cmd.Context(), suggest.Request{
				Kind:        k,
				Hint:        strings.Join(args[1:], " "),
				Model:       brd.ModelName(model),
				Temperature: temperature,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"kind": s.Kind, "fields": s.Fields})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name (default from config)")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", -1, "sampling temperature (default from config)")
	return cmd
}
