package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tutor-dashboard/board"
	"tutor-dashboard/config"
	"tutor-dashboard/domain"
	"tutor-dashboard/storage"
)

// cli carries the flags and the opened board shared by every subcommand.
type cli struct {
	file   string
	envCfg string

	store   *board.Store
	closeKV func() error
	logger  *log.Logger
}

type boardDoc struct {
	Columns   []columnDoc       `yaml:"columns"`
	Schedules []domain.Schedule `yaml:"schedules"`
}

type columnDoc struct {
	Category string        `yaml:"category"`
	Tasks    []domain.Task `yaml:"tasks"`
}

// run executes one boardctl invocation and always releases the board storage.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{closeKV: func() error { return nil }}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := c.closeKV(); err == nil {
		err = cerr
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "boardctl",
		Short:             "Inspect and edit the tutoring task board and schedule book.",
		Long:              `boardctl opens the same board storage the dashboard server uses and runs one board operation per invocation.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
	}
	root.PersistentFlags().StringVar(&c.file, "file", "", "Path to a local board file. Overrides BOARD_BACKEND with the bolt backend.")
	root.PersistentFlags().StringVar(&c.envCfg, "env", ".env", "Optional .env file with board settings.")

	root.AddCommand(c.showCmd(), c.tasksCmd(), c.schedulesCmd())
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	c.logger = log.New()
	c.logger.SetOutput(cmd.ErrOrStderr())
	if cfg.Debug {
		c.logger.SetLevel(log.DebugLevel)
	}

	kv, closeKV, err := storage.OpenBoardKV(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	c.closeKV = closeKV
	c.store = board.New(kv,
		board.WithLogger(c.logger),
		board.WithKeys(board.Keys{Tasks: cfg.TasksKey, Schedules: cfg.SchedulesKey}),
	)
	return c.store.Load(cmd.Context())
}

func (c *cli) config() (*config.Config, error) {
	cfg, err := config.Load(c.envCfg)
	if err != nil {
		return nil, err
	}
	if c.file != "" {
		cfg.Backend = config.BackendBolt
		cfg.BoltPath = c.file
	}
	return cfg, nil
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the whole board as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap := c.store.Snapshot()
			doc := boardDoc{Schedules: snap.Schedules}
			for _, col := range snap.Columns {
				doc.Columns = append(doc.Columns, columnDoc{Category: string(col.Category), Tasks: col.Tasks})
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "boardctl:", err)
		os.Exit(1)
	}
}
