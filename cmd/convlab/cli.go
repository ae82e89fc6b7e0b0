package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/convlab/internal/envconfig"
	"github.com/born-ml/convlab/internal/logutil"
	"github.com/born-ml/convlab/internal/nn"
	"github.com/born-ml/convlab/internal/session"
	"github.com/born-ml/convlab/internal/store"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "convlab",
		Short: "Step through a convolution layer",
		Long:  "Generate a multi-channel input and a set of filters, then show every partial convolution and feature map they produce.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			slog.SetDefault(logutil.NewLogger(os.Stderr, logutil.Level(envconfig.Debug)))
		},
	}

	cobra.EnableCommandSorting = false

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show inputs, filters and feature maps for the saved configuration",
		Args:  cobra.NoArgs,
		RunE:  showHandler,
	}
	showCmd.Flags().BoolP("intermediates", "i", false, "Show the per-channel partial convolutions")
	showCmd.Flags().Int64("seed", 0, "Seed for reproducible generation (overrides CONVLAB_SEED)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the layer configuration",
	}

	configGetCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the layer configuration",
		Args:  cobra.NoArgs,
		RunE:  configGetHandler,
	}

	configSetCmd := &cobra.Command{
		Use:     "set KEY=VALUE [KEY=VALUE...]",
		Short:   "Change one or more layer settings",
		Example: "  convlab config set inputChannels=2 kernelSize=5 stride=2",
		Args:    cobra.MinimumNArgs(1),
		RunE:    configSetHandler,
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE:  configResetHandler,
	}

	configCmd.AddCommand(configGetCmd, configSetCmd, configResetCmd)

	opsCmd := &cobra.Command{
		Use:   "ops",
		Short: "Count the arithmetic a convolution layer performs",
		Args:  cobra.NoArgs,
		RunE:  opsHandler,
	}
	opsCmd.Flags().Int("height", 32, "Input height")
	opsCmd.Flags().Int("width", 32, "Input width")
	opsCmd.Flags().Int("channels", 3, "Input channels")
	opsCmd.Flags().Int("filters", 10, "Number of filters")
	opsCmd.Flags().Int("kernel", 3, "Kernel size")
	opsCmd.Flags().Int("stride", 1, "Stride")
	opsCmd.Flags().Int("padding", 0, "Padding")
	opsCmd.Flags().Float64("sparsity", 0, "Percentage of zero weights")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show environment settings",
		Args:  cobra.NoArgs,
		RunE:  envHandler,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "convlab %s\n", version)
		},
	}

	rootCmd.AddCommand(showCmd, configCmd, opsCmd, envCmd, versionCmd)

	return rootCmd
}

func openSession(opts ...session.Option) (*session.Session, error) {
	if envconfig.HasSeed {
		opts = append([]session.Option{session.WithSeed(envconfig.Seed)}, opts...)
	}
	return session.Open(store.New(envconfig.Home), opts...)
}

func showHandler(cmd *cobra.Command, args []string) error {
	var opts []session.Option
	if cmd.Flags().Changed("seed") {
		seed, err := cmd.Flags().GetInt64("seed")
		if err != nil {
			return err
		}
		opts = append(opts, session.WithSeed(seed))
	}

	s, err := openSession(opts...)
	if err != nil {
		return err
	}

	snap, err := s.Snapshot()
	if err != nil {
		return err
	}

	intermediates, err := cmd.Flags().GetBool("intermediates")
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	renderConfig(w, snap.Config)
	renderSnapshot(w, snap, intermediates)
	renderOps(w, session.CountOps(snap.Config))
	return nil
}

func configGetHandler(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	renderConfig(cmd.OutOrStdout(), s.Config())
	return nil
}

func configSetHandler(cmd *cobra.Command, args []string) error {
	edit, err := parseAssignments(args)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	cfg, err := s.Update(edit)
	if err != nil {
		return err
	}
	renderConfig(cmd.OutOrStdout(), cfg)
	return nil
}

func configResetHandler(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.Reset(); err != nil {
		return err
	}
	renderConfig(cmd.OutOrStdout(), s.Config())
	return nil
}

func opsHandler(cmd *cobra.Command, args []string) error {
	var p nn.OpsParams
	var err error

	flags := cmd.Flags()
	for name, dst := range map[string]*int{
		"height":   &p.InputHeight,
		"width":    &p.InputWidth,
		"channels": &p.InputChannels,
		"filters":  &p.NumFilters,
		"kernel":   &p.KernelSize,
		"stride":   &p.Stride,
		"padding":  &p.Padding,
	} {
		if *dst, err = flags.GetInt(name); err != nil {
			return err
		}
	}
	if p.Sparsity, err = flags.GetFloat64("sparsity"); err != nil {
		return err
	}

	renderOps(cmd.OutOrStdout(), nn.CountOps(p))
	return nil
}

func envHandler(cmd *cobra.Command, args []string) error {
	renderEnv(cmd.OutOrStdout(), envconfig.AsMap())
	return nil
}

// parseAssignments turns KEY=VALUE arguments into a partial config edit.
func parseAssignments(args []string) (map[string]any, error) {
	edit := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q, expected KEY=VALUE", arg)
		}
		edit[key] = strings.TrimSpace(value)
	}
	return edit, nil
}
