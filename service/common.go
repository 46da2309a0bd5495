// Package service holds the postboard command line.
package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"postboard/app/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const cliVersion = "1.0.0"

// cli carries what every command shares.
type cli struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *zap.Logger

	in  io.Reader
	out io.Writer
}

// NewRootCommand builds the command tree. in and out replace stdin and stdout.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, cfg: config.Default(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "postboard",
		Short:         "Render a user's posts with their authors and comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Sync()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		c.serveCommand(),
		c.renderCommand(),
		c.storeCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(c.out, "postboard version %s\n", cliVersion)
			},
		},
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg, c.log = cfg, log
	return nil
}

// newLogger builds the zap logger described by cfg.
func newLogger(cfg config.Log) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level
	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// confirm asks a yes/no question on the command's streams.
func (c *cli) confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(c.in).ReadString('\n')
	response := strings.TrimSpace(line)
	return response == "y" || response == "Y"
}
