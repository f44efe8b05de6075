package cli

import (
	"github.com/packwright/packwright/internal/pipeline"
	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRunCmd creates the run command, the pipeline entry point
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full export-and-package pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.SetDefault("project_path", projectRoot)

			cfg, err := config.NewManager().FromViper(viper.GetViper())
			if err != nil {
				printError("Invalid configuration: " + err.Error())
				return err
			}

			log := logger.CreateLogger("", verbosity)
			return pipeline.New(cfg, log).Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("engine-url", "", "engine executable archive URL")
	flags.String("templates-url", "", "export templates archive URL")
	flags.String("project-path", "", "relative path to the engine project")
	flags.String("output-path", "", "final output directory")
	flags.String("engine-major", "3", "engine major version (2 or 3)")
	flags.Bool("archive", true, "compress artifacts into zip archives")
	flags.Bool("use-preset-path", false, "place output inside each preset's export path")
	flags.Bool("strip-root", false, "strip the top-level folder from archives")
	flags.Bool("debug", false, "export debug builds")
	flags.Bool("pack-only", false, "export data packs only")
	flags.Bool("verbose", false, "pass the engine's verbose flag")
	flags.String("wine-path", "", "Windows cross-compilation toolchain path")
	flags.String("workdir", "", "scratch working directory (default: per-run temp dir)")
	flags.Bool("notify", false, "send a desktop notification when done")

	viper.BindPFlag("engine_url", flags.Lookup("engine-url"))
	viper.BindPFlag("templates_url", flags.Lookup("templates-url"))
	viper.BindPFlag("project_path", flags.Lookup("project-path"))
	viper.BindPFlag("output_path", flags.Lookup("output-path"))
	viper.BindPFlag("engine_major", flags.Lookup("engine-major"))
	viper.BindPFlag("archive", flags.Lookup("archive"))
	viper.BindPFlag("use_preset_path", flags.Lookup("use-preset-path"))
	viper.BindPFlag("strip_root", flags.Lookup("strip-root"))
	viper.BindPFlag("debug", flags.Lookup("debug"))
	viper.BindPFlag("pack_only", flags.Lookup("pack-only"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("wine_path", flags.Lookup("wine-path"))
	viper.BindPFlag("workdir", flags.Lookup("workdir"))
	viper.BindPFlag("notify", flags.Lookup("notify"))

	return cmd
}
