package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

var (
	appVersion   = "dev"
	appBuildTime = "unknown"
)

// SetVersion records the build metadata injected by main
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// no config needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(versionString(appVersion, appBuildTime))
		return nil
	},
}

func versionString(version, buildTime string) string {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Sprintf("wgapi %s (development build, built %s)", version, buildTime)
	}
	if len(v.Pre) > 0 {
		return fmt.Sprintf("wgapi v%s (pre-release, built %s)", v, buildTime)
	}
	return fmt.Sprintf("wgapi v%s (built %s)", v, buildTime)
}
