package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"weave/internal/cache"
	"weave/internal/diag"
	"weave/internal/pipeline"
	"weave/internal/project"
	"weave/internal/source"
)

var applyCmd = &cobra.Command{
	Use:   "apply [model.toml] [plan.toml]",
	Short: "Apply an aspect plan to a model and print the lowered code",
	Long: `Apply runs every aspect of the plan over the model, in dependency order,
prints the lowered declarations to stdout (or --output) and reports
diagnostics to stderr. Inputs default to project.model and project.plan
from weave.toml.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|sarif)")
	applyCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	applyCmd.Flags().StringP("output", "o", "", "write lowered code to this file instead of stdout")
	applyCmd.Flags().Bool("design-time", false, "drop compile-time-only members and bodies")
	applyCmd.Flags().Bool("notes", true, "show diagnostic notes")
}

func runApply(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dt, _ := cmd.Flags().GetBool("design-time"); dt {
		cfg.Engine.DesignTime = true
	}
	modelPath, planPath, err := inputPaths(cfg, args, true)
	if err != nil {
		return err
	}

	formatValue, _ := cmd.Flags().GetString("format")
	pathValue, _ := cmd.Flags().GetString("path-mode")
	colorValue, _ := cmd.Root().PersistentFlags().GetString("color")
	notes, _ := cmd.Flags().GetBool("notes")
	dopts, err := newDiagOptions(formatValue, pathValue, colorValue, notes, os.Args[1:])
	if err != nil {
		return err
	}
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	uiValue, _ := cmd.Root().PersistentFlags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()
	ctx := cmd.Context()

	loadStarted := time.Now()
	in, err := readInputs(ctx, modelPath, planPath)
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	store, key := openCache(cmd, cfg, in)
	if store != nil {
		payload, ok, err := store.Get(key)
		switch {
		case err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
		case ok:
			// те же FileID, что и при разборе: модель, затем план
			fs.AddSource(modelPath, in.model)
			fs.AddSource(planPath, in.plan)
			bag := diag.NewBag(0)
			for _, d := range payload.Diagnostics {
				bag.Add(d)
			}
			return finishApply(cmd, outPath, payload.Text, bag, fs, dopts)
		}
	}

	loadBag := diag.NewBag(cfg.Engine.MaxDiagnostics)
	loadReporter := diag.BagReporter{Bag: loadBag}
	base, err := project.ParseModel(fs, modelPath, in.model, loadReporter)
	if err != nil {
		return err
	}
	plan, err := project.ParsePlan(fs, planPath, in.plan, loadReporter)
	if err != nil {
		return err
	}
	loaded := time.Since(loadStarted)
	if loadBag.HasErrors() {
		loadBag.Sort()
		if rerr := renderDiagnostics(cmd.ErrOrStderr(), loadBag, fs, dopts); rerr != nil {
			return rerr
		}
		return errDiagnostics
	}

	p := pipeline.Pipeline{Options: cfg.PipelineOptions()}
	p.Options.EnableTimings = showTimings
	aspects := plan.Aspects()

	var res *pipeline.Result
	if shouldUseTUI(mode) && len(aspects) > 0 {
		res, err = runWithUI(ctx, "weave apply", p, base, aspects)
	} else {
		res, err = p.Run(ctx, base, aspects)
	}
	if err != nil {
		if res != nil && res.Bag != nil {
			_ = renderDiagnostics(cmd.ErrOrStderr(), res.Bag, fs, dopts)
		}
		return err
	}

	bag := diag.NewBag(cfg.Engine.MaxDiagnostics)
	bag.Merge(loadBag)
	bag.Merge(res.Bag)
	bag.Sort()

	if store != nil {
		payload := &cache.Payload{
			Text:            res.Text,
			Diagnostics:     bag.Items(),
			Transformations: len(res.Transformations),
			Created:         time.Now().UTC(),
		}
		if perr := store.Put(key, payload); perr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", perr)
		}
	}

	// в машиночитаемом выводе тайминги идут отдельной диагностикой
	structured := dopts.format != formatPretty
	if showTimings && structured {
		bag.Add(res.Timer.Diagnostic())
	}
	if err := finishApply(cmd, outPath, res.Text, bag, fs, dopts); err != nil {
		return err
	}
	if showTimings && !structured {
		return printStageTimings(cmd.ErrOrStderr(), res.Timings, res.Timer, loaded)
	}
	return nil
}

// openCache returns nil when caching is disabled or unavailable.
func openCache(cmd *cobra.Command, cfg project.Config, in inputs) (*cache.Disk, project.Digest) {
	if !cfg.Cache.Enabled {
		return nil, project.Digest{}
	}
	fp, err := configFingerprint(cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
		return nil, project.Digest{}
	}
	store, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
		return nil, project.Digest{}
	}
	return store, cache.Key(fp, in.model, in.plan)
}

func finishApply(cmd *cobra.Command, outPath, text string, bag *diag.Bag, fs *source.FileSet, dopts diagOptions) error {
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o600); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if _, err := fmt.Fprint(cmd.OutOrStdout(), text); err != nil {
		return err
	}
	if err := renderDiagnostics(cmd.ErrOrStderr(), bag, fs, dopts); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}
