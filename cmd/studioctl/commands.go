package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/config"
	"github.com/ijwihub/studio-cms/internal/repository"
	"github.com/ijwihub/studio-cms/internal/server"
)

// app is opened lazily by the commands that need a store.
type app struct {
	configFile string
	envFile    string
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "studioctl",
		Short:        "Manage studio admins and content",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configFile, "config", os.Getenv("STUDIO_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "path to a .env file (skipped if missing)")

	root.AddCommand(
		a.seedAdminCmd(),
		a.listAdminsCmd(),
		a.seedContentCmd(),
		hashPasswordCmd(out),
	)
	return root
}

// open loads config and the store. The caller closes the store.
func (a *app) open() (*server.Services, repository.Store, error) {
	cfg, err := config.Load(config.Options{ConfigFile: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return nil, nil, err
	}
	// command output goes to out; logs only matter when something fails
	logger := config.LogConfig{Level: "warn", Format: cfg.Log.Format}.NewLogger(os.Stderr)

	if cfg.Store.Driver == config.DriverMemory {
		return nil, nil, errors.New("the memory store does not persist; set store.driver to sqlite or postgres")
	}

	store, err := server.OpenStore(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	services, err := server.NewServices(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return services, store, nil
}

func (a *app) seedAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin, or reset the password of an existing one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("STUDIO_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or STUDIO_ADMIN_PASSWORD) are required")
			}

			services, store, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			admin, err := services.Auth.SeedAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "admin %s ready (id %s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (8-72 bytes)")
	return cmd
}

func (a *app) listAdminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "Print every admin (never the password hash)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, store, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			admins, err := services.Auth.ListAdmins(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tCREATED")
			for _, adm := range admins {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", adm.ID, adm.Email, adm.Role, adm.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func (a *app) seedContentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-content",
		Short: "Insert the default services and portfolio works into empty collections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, store, err := a.open()
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := services.SeedContent(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "inserted %d services and %d portfolio works\n", res.Services, res.Works)
			return nil
		},
	}
}

// hashPasswordCmd needs no store, so it skips config loading entirely.
func hashPasswordCmd(out io.Writer) *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			passwords, err := auth.NewPasswordService(cost)
			if err != nil {
				return err
			}
			hash, err := passwords.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", auth.DefaultCost, "bcrypt cost")
	return cmd
}
