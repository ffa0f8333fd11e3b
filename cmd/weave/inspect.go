package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/project"
	"weave/internal/source"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [model.toml] [plan.toml]",
	Short: "List the declarations of a model and the aspect order of a plan",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	inspectCmd.Flags().Bool("params", false, "include parameters")
}

type declEntry struct {
	Kind      string   `json:"kind"`
	Name      string   `json:"name"`
	Access    string   `json:"access,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	Depth     int      `json:"depth"`
	Synthetic bool     `json:"synthetic,omitempty"`
}

type inspectOutput struct {
	Declarations []declEntry `json:"declarations"`
	Order        []string    `json:"order,omitempty"`
	Batches      [][]string  `json:"batches,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	modelPath, planPath, err := inputPaths(cfg, args, false)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		// план из конфига показываем только вместе с моделью из конфига
		planPath = ""
	}
	formatValue, _ := cmd.Flags().GetString("format")
	format, err := readOutputFormat(formatValue)
	if err != nil || format == formatSarif {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", formatValue)
	}
	withParams, _ := cmd.Flags().GetBool("params")
	colorValue, _ := cmd.Root().PersistentFlags().GetString("color")
	colored, err := useColor(colorValue, os.Stdout)
	if err != nil {
		return err
	}

	in, err := readInputs(cmd.Context(), modelPath, planPath)
	if err != nil {
		return err
	}
	fs := source.NewFileSet()
	bag := diag.NewBag(cfg.Engine.MaxDiagnostics)
	snap, err := project.ParseModel(fs, modelPath, in.model, diag.BagReporter{Bag: bag})
	if err != nil {
		return err
	}
	out := inspectOutput{Declarations: collectDecls(snap, withParams)}
	if planPath != "" {
		plan, err := project.ParsePlan(fs, planPath, in.plan, diag.BagReporter{Bag: bag})
		if err != nil {
			return err
		}
		out.Order, out.Batches = plan.Order, plan.Batches
	}

	if format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		err = enc.Encode(out)
	} else {
		err = renderInspect(cmd.OutOrStdout(), out, colored)
	}
	if err != nil {
		return err
	}
	if bag.Len() > 0 {
		bag.Sort()
		dopts, derr := newDiagOptions("pretty", "auto", colorValue, true, nil)
		if derr != nil {
			return derr
		}
		if derr := renderDiagnostics(cmd.ErrOrStderr(), bag, fs, dopts); derr != nil {
			return derr
		}
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func collectDecls(snap *model.Snapshot, withParams bool) []declEntry {
	var out []declEntry
	snap.Walk(func(d *model.Decl, depth int) bool {
		if d.Kind == model.DeclParameter && !withParams {
			return true
		}
		e := declEntry{
			Kind:      d.Kind.String(),
			Name:      snap.Display(d.Ref),
			Modifiers: d.Flags.Strings(),
			Depth:     depth,
			Synthetic: d.Origin.Kind == model.OriginSynthesized,
		}
		if d.Kind == model.DeclParameter {
			e.Name = d.Name
		} else if d.Kind != model.DeclNamespace {
			e.Access = d.Access.String()
		}
		out = append(out, e)
		return true
	})
	return out
}

func renderInspect(w io.Writer, out inspectOutput, colored bool) error {
	kindColor := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{kindColor, dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	for _, e := range out.Declarations {
		b.WriteString(strings.Repeat("  ", e.Depth))
		b.WriteString(kindColor.Sprintf("%-11s", e.Kind))
		b.WriteString(" ")
		b.WriteString(e.Name)
		var extra []string
		if e.Access != "" {
			extra = append(extra, e.Access)
		}
		extra = append(extra, e.Modifiers...)
		if e.Synthetic {
			extra = append(extra, "implicit")
		}
		if len(extra) > 0 {
			b.WriteString(dim.Sprintf("  [%s]", strings.Join(extra, " ")))
		}
		b.WriteString("\n")
	}
	if len(out.Order) > 0 {
		b.WriteString("\naspect order:\n")
		for i, batch := range out.Batches {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, strings.Join(batch, ", "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
