package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionInfo is what the version command reports.
type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versionInfo{
			Version:   version,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if jsonFlag {
			return printJSON(cmd, info)
		}
		cmd.Printf("docrag version %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
