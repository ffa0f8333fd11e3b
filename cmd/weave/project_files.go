package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"weave/internal/project"
)

// loadConfig reads --config, or the nearest weave.toml above the working
// directory, or falls back to defaults. Flags override file values.
func loadConfig(cmd *cobra.Command) (project.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return project.Config{}, err
		}
		found, ok, err := project.FindConfig(wd)
		if err != nil {
			return project.Config{}, err
		}
		if ok {
			path = found
		}
	}

	cfg := project.DefaultConfig()
	if path != "" {
		if cfg, err = project.LoadConfig(path); err != nil {
			return project.Config{}, err
		}
	}

	if flags.Changed("max-diagnostics") {
		n, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return project.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		cfg.Engine.MaxDiagnostics = n
	}
	if noCache, err := flags.GetBool("no-cache"); err != nil {
		return project.Config{}, fmt.Errorf("failed to get no-cache flag: %w", err)
	} else if noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return project.Config{}, err
	}
	return cfg, nil
}

// inputPaths picks the model and plan files: positional arguments win over
// the [project] section.
func inputPaths(cfg project.Config, args []string, needPlan bool) (modelPath, planPath string, err error) {
	modelPath, planPath = cfg.Project.Model, cfg.Project.Plan
	if len(args) > 0 {
		modelPath = args[0]
	}
	if len(args) > 1 {
		planPath = args[1]
	}
	if modelPath == "" {
		return "", "", fmt.Errorf("no model file: pass it as an argument or set project.model in %s", project.ConfigName)
	}
	if needPlan && planPath == "" {
		return "", "", fmt.Errorf("no plan file: pass it as an argument or set project.plan in %s", project.ConfigName)
	}
	return modelPath, planPath, nil
}

type inputs struct {
	model []byte
	plan  []byte
}

// readInputs reads the model and plan concurrently.
func readInputs(ctx context.Context, modelPath, planPath string) (inputs, error) {
	var in inputs
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.model, err = project.ReadFile(modelPath)
		return err
	})
	if planPath != "" {
		g.Go(func() (err error) {
			in.plan, err = project.ReadFile(planPath)
			return err
		})
	}
	return in, g.Wait()
}

// configFingerprint renders the effective config so it can take part in the
// cache key. Input paths are left out; the inputs are hashed by content.
func configFingerprint(cfg project.Config) ([]byte, error) {
	cfg.Path = ""
	cfg.Project = project.ProjectConfig{}
	cfg.Trace = project.TraceConfig{}
	cfg.Cache = project.CacheConfig{}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
