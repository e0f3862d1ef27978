package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-fold/framework/app"
	"github.com/km-arc/go-fold/framework/config"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	envFiles          []string
	autoloadNamespace string
	autoloadDir       string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Namespace container with autoloaded modules",
		Long: appName + " resolves namespaces through bindings, an autoload directory and aliases,\n" +
			"and serves container diagnostics over HTTP.",
	}

	root.PersistentFlags().StringArrayVar(&flags.envFiles, "env-file", nil,
		"env file to load before the environment (repeatable; default: .env)")
	root.PersistentFlags().StringVar(&flags.autoloadNamespace, "autoload-namespace", "",
		"namespace prefix served from the autoload directory (overrides AUTOLOAD_NAMESPACE)")
	root.PersistentFlags().StringVar(&flags.autoloadDir, "autoload-dir", "",
		"directory backing the autoload namespace (overrides AUTOLOAD_DIR)")

	root.AddCommand(newServeCmd(flags), newResolveCmd(flags), newListCmd(flags))
	return root
}

// bootstrap builds and boots the application, applying flag overrides on
// top of the loaded config.
func bootstrap(flags *rootFlags, logOutput io.Writer) (*app.Application, error) {
	cfg := config.Load(flags.envFiles...)
	if flags.autoloadNamespace != "" {
		cfg.Container.AutoloadNamespace = flags.autoloadNamespace
	}
	if flags.autoloadDir != "" {
		cfg.Container.AutoloadDir = flags.autoloadDir
	}

	a, err := app.NewWithConfig(cfg, logOutput)
	if err != nil {
		return nil, err
	}
	if err := a.Boot(); err != nil {
		return nil, err
	}
	logger := a.Logger()
	logger.Debug().
		Str("env", a.Environment()).
		Bool("debug", a.IsDebug()).
		Str("autoload_namespace", a.Config().Container.AutoloadNamespace).
		Str("autoload_dir", a.Config().Container.AutoloadDir).
		Msg("application booted")
	return a, nil
}
