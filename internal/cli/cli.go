// Package cli carries the small set of CLI-boundary helpers whyc needs:
// version printing and fatal-error exit. No command-table/usage
// machinery here, since whyc is a single-purpose binary, not a
// multi-subcommand dispatcher.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// CompilerVersion is whyc's own version, checked against --lang-version /
// whyc.yaml's language_version constraint.
const CompilerVersion = "0.1.0"

// VersionInfo is the structured form PrintVersion can emit as JSON.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

func versionInfo() VersionInfo {
	return VersionInfo{
		Version:   CompilerVersion,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes toolName's version to stdout, as JSON if requested.
func PrintVersion(toolName string, jsonOutput bool) {
	info := versionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]any{"tool": toolName, "version_info": info}, "", "  ")
		if err == nil {
			fmt.Println(string(data))
			return
		}
		fmt.Fprintf(os.Stderr, "Error: failed to marshal version info: %v\n", err)
	}

	fmt.Printf("%s v%s\n", toolName, info.Version)
	fmt.Printf("Go Version: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s/%s\n", info.Platform, info.Arch)
}

// ExitWithError prints a formatted error to stderr and exits 1.
func ExitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
