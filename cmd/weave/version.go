package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"weave/internal/cache"
	"weave/internal/version"
)

// buildInfo is what `weave version` reports. Optional fields stay empty
// unless asked for.
type buildInfo struct {
	Tool        string `json:"tool"`
	Version     string `json:"version"`
	GitCommit   string `json:"git_commit,omitempty"`
	GitMessage  string `json:"git_message,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
	GoVersion   string `json:"go_version,omitempty"`
	CacheSchema uint16 `json:"cache_schema,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show weave build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.String("format", "pretty", "output format (pretty|json)")
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "include all build metadata, the Go runtime and the cache schema")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	full, _ := cmd.Flags().GetBool("full")
	want := func(name string) bool {
		on, _ := cmd.Flags().GetBool(name)
		return on || full
	}

	info := buildInfo{Tool: "weave", Version: version.Short()}
	if want("hash") {
		info.GitCommit = known(version.GitCommit)
	}
	if want("message") {
		info.GitMessage = known(version.GitMessage)
	}
	if want("date") {
		info.BuildDate = known(version.BuildDate)
	}
	if full {
		info.GoVersion = runtime.Version()
		info.CacheSchema = cache.SchemaVersion
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	colorValue, _ := cmd.Root().PersistentFlags().GetString("color")
	colored, err := useColor(colorValue, os.Stdout)
	if err != nil {
		return err
	}
	return printVersion(cmd.OutOrStdout(), info, colored)
}

func printVersion(out io.Writer, info buildInfo, colored bool) error {
	lines := []string{fmt.Sprintf("weave %s", version.Colored(info.Version, colored))}
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-8s %s", label+":", value))
		}
	}
	add("commit", info.GitCommit)
	add("message", info.GitMessage)
	add("built", info.BuildDate)
	add("go", info.GoVersion)
	if info.CacheSchema != 0 {
		add("cache", fmt.Sprintf("schema v%d", info.CacheSchema))
	}
	_, err := io.WriteString(out, strings.Join(lines, "\n")+"\n")
	return err
}

func known(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return "unknown"
}
