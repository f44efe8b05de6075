package cli

import (
	"fmt"

	"github.com/packwright/packwright/pkg/presets"
	"github.com/spf13/cobra"
)

// newPresetsCmd creates the presets listing command
func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the project's export presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := presets.Load(projectRoot)
			if err != nil {
				printError(err.Error())
				return err
			}

			printInfo(fmt.Sprintf("%d preset(s) in %s", len(targets), projectRoot))
			for _, t := range targets {
				path := t.ExportPath
				if path == "" {
					path = "(no export path, will be skipped)"
				}
				fmt.Printf("  %-24s %-10s %s\n", t.Name, t.Platform, path)
			}
			return nil
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("packwright v%s\n", version)
		},
	}
}
