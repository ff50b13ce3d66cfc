// cmd/tools/insight-tool/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"attrition-workers/internal/insight"
	"attrition-workers/internal/render"
	"attrition-workers/pkg/registry"
)

// parsed is what the parse subcommand prints.
type parsed struct {
	insight.Insight
	MissingSections []string `json:"missingSections"`
	ActionsHTML     string   `json:"actionsHtml,omitempty"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "insight-tool",
		Short:        "Inspect attrition insight narratives and the activity registry",
		SilenceUsage: true,
	}
	root.AddCommand(newParseCmd(), newRegistryCmd())
	return root
}

func newParseCmd() *cobra.Command {
	var (
		file           string
		classification string
		withHTML       bool
	)
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a narrative and print the structured insight as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return parseNarrative(text, classification, withHTML, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "narrative text file, - for stdin")
	cmd.Flags().StringVar(&classification, "classification", "", "classification label (e.g. High Risk)")
	cmd.Flags().BoolVar(&withHTML, "html", false, "include sanitized actions HTML")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Validate the activity registry and list its task types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, a := range reg.Activities {
				fmt.Fprintf(out, "%-30s %-12s %s\n", a.TaskType, a.ImplementationStatus, a.Timeout)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "configs/activity-registry.json", "path to registry file")
	return cmd
}

func readInput(file string, stdin io.Reader) (string, error) {
	if file == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read narrative: %w", err)
	}
	return string(b), nil
}

func parseNarrative(text, classification string, withHTML bool, out io.Writer) error {
	ins := insight.Parse(text, classification)

	res := parsed{Insight: ins, MissingSections: make([]string, 0, len(ins.Missing))}
	for _, s := range ins.Missing {
		res.MissingSections = append(res.MissingSections, s.String())
	}
	if withHTML {
		res.ActionsHTML = render.NewRenderer(nil).ActionsHTML(ins.Actions, ins.ActionItems)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
