package service

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"postboard/app/controllers"
	"postboard/app/repositories"
	"postboard/app/routes"
	"postboard/app/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) storeCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage and serve the local collection store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(); err != nil {
				return err
			}
			if path != "" {
				c.cfg.Store.Path = path
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "database directory (overrides store.path)")

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over HTTP in the shape of the remote one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Store.Addr = addr
			}
			store, err := repositories.Open(c.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := services.NewStoreService(store.Users, store.Posts, store.Comments)
			router := routes.SetupStoreRoutes(controllers.NewStoreController(svc, c.log), c.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return routes.StartServer(ctx, c.cfg.Store.Addr, router, c.log)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides store.addr)")

	var yes bool
	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove the store database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.clean(yes)
		},
	}
	clean.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	var backupDir string
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the store database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.backup(backupDir)
			return err
		},
	}
	backup.Flags().StringVar(&backupDir, "dir", "data/backups", "directory the backup file is written to")

	var replace bool
	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the store database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.restore(args[0], replace)
		},
	}
	restore.Flags().BoolVarP(&replace, "yes", "y", false, "replace an existing database without asking")

	cmd.AddCommand(serve, c.seedCommand(), clean, backup, restore)
	return cmd
}

func (c *cli) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [fixture.json]",
		Short: "Load a fixture into the store, the embedded one when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fixture *services.Fixture
			var err error
			if len(args) == 1 {
				f, openErr := os.Open(args[0])
				if openErr != nil {
					return fmt.Errorf("failed to open fixture: %w", openErr)
				}
				defer f.Close()
				fixture, err = services.ReadFixture(f)
			} else {
				fixture, err = services.DefaultFixture()
			}
			if err != nil {
				return err
			}

			store, err := repositories.Open(c.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			counts, err := services.NewStoreService(store.Users, store.Posts, store.Comments).Seed(fixture)
			if err != nil {
				return err
			}
			c.log.Info("store seeded", zap.String("path", c.cfg.Store.Path),
				zap.Int("users", counts.Users), zap.Int("posts", counts.Posts), zap.Int("comments", counts.Comments))
			fmt.Fprintf(c.out, "Seeded %d users, %d posts, %d comments\n", counts.Users, counts.Posts, counts.Comments)
			return nil
		},
	}
}

// clean removes the database.
func (c *cli) clean(yes bool) error {
	dbPath := c.cfg.Store.Path
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(c.out, "Database is already clean (does not exist)")
		return nil
	}
	if !yes && !c.confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(c.out, "Operation cancelled")
		return nil
	}
	if err := os.RemoveAll(dbPath); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(c.out, "Database cleaned successfully")
	return nil
}

// backup writes a backup of the database into dir and returns its path.
func (c *cli) backup(dir string) (string, error) {
	dbPath := c.cfg.Store.Path
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("no database exists to backup at %s", dbPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	store, err := repositories.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}
	fmt.Fprintf(c.out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restore replaces the database with the contents of backupFile.
func (c *cli) restore(backupFile string, yes bool) (err error) {
	fi, err := os.Stat(backupFile)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	dbPath := c.cfg.Store.Path
	if _, statErr := os.Stat(dbPath); statErr == nil {
		if !yes && !c.confirm("Existing database found. Do you want to replace it?") {
			fmt.Fprintln(c.out, "Operation cancelled")
			return nil
		}
		if err := os.RemoveAll(dbPath); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	store, err := repositories.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	if err := store.Restore(f); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	fmt.Fprintln(c.out, "Database restored successfully")
	return nil
}
