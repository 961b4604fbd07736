package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jask/fireflymoney/internal/backend"
	"github.com/jask/fireflymoney/internal/config"
	"github.com/jask/fireflymoney/internal/database"
	"github.com/jask/fireflymoney/internal/database/repository"
	"github.com/jask/fireflymoney/internal/firefly"
	"github.com/jask/fireflymoney/internal/logging"
	"github.com/jask/fireflymoney/internal/prefs"
	"github.com/jask/fireflymoney/internal/secrets"
	"github.com/jask/fireflymoney/internal/service"
	"github.com/jask/fireflymoney/internal/store"
	"github.com/jask/fireflymoney/internal/testdata"
	"github.com/jask/fireflymoney/internal/tui"
)

// app is the state shared by every command once the root pre-run finished.
type app struct {
	configPath string
	backend    string

	cfg    config.Config
	log    *log.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fireflymoney",
		Short: "Terminal companion for a Firefly III server",
		Long: `fireflymoney shows net worth, balances, accounts and spending per category
for a Firefly III server, and lets you record new transactions with
autocomplete. A local sqlite ledger can stand in for the server.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
		RunE: a.runTUI,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $HOME/.config/fireflymoney/config.toml)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "data source: firefly or sqlite")

	root.AddCommand(a.loginCmd(), a.logoutCmd(), a.seedCmd())
	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	if a.configPath != "" {
		if err := os.Setenv("FIREFLYMONEY_CONFIG", a.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Backend.Kind = strings.ToLower(strings.TrimSpace(a.backend))
	}
	a.cfg = cfg

	logger, closer, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.log, a.closer = logger, closer
	return nil
}

func (a *app) tokens() backend.TokenLookup {
	st, err := secrets.Default()
	if err != nil {
		a.log.Warn("secrets store unavailable", "err", err)
		return nil
	}
	return st.Get
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	res, err := backend.NewFactory(a.log, a.tokens()).Create(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			a.log.Warn("backend cleanup failed", "err", err)
		}
	}()

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	now := func() time.Time { return time.Now().In(loc) }

	opts := []store.Option{
		store.WithLogger(a.log.WithPrefix("store")),
		store.WithClock(now),
		store.WithSelection(store.Selection{RangeMonths: a.cfg.UI.DefaultRange, CurrencyCode: a.cfg.UI.DefaultCurrency}),
	}
	if pf, err := prefs.Default(); err == nil {
		opts = append(opts, store.WithPrefs(pf))
	} else {
		a.log.Warn("prefs unavailable", "err", err)
	}
	st := store.New(res.Backend, opts...)
	if err := st.LoadPrefs(); err != nil {
		a.log.Warn("loading prefs failed", "err", err)
	}

	m := tui.New(ctx, tui.Deps{
		Backend:    res.Backend,
		Store:      st,
		Log:        a.log,
		Debounce:   a.cfg.UI.AutocompleteDebounce,
		DateFormat: a.cfg.UI.DateFormat,
		Now:        now,
	})
	a.log.Info("starting ui", "backend", res.Kind)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func (a *app) loginCmd() *cobra.Command {
	var url, token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify a personal access token and store it for the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url != "" {
				a.cfg.Firefly.URL = strings.TrimRight(strings.TrimSpace(url), "/")
			}
			if a.cfg.Firefly.URL == "" {
				return errors.New("no server url: pass --url or set firefly.url")
			}
			if token == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Personal access token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return firefly.ErrNoToken
			}

			client := firefly.NewClient(a.cfg.Firefly.URL, token, a.cfg.Firefly.Timeout, firefly.WithLogger(a.log.WithPrefix("firefly")))
			about, err := client.About(cmd.Context())
			if err != nil {
				if firefly.IsUnauthorized(err) {
					return errors.New("the server rejected the token")
				}
				return err
			}

			st, err := secrets.Default()
			if err != nil {
				return err
			}
			if err := st.Put(a.cfg.Host(), token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			if url != "" {
				if err := config.Save(a.cfg); err != nil {
					return err
				}
			}
			a.log.Info("logged in", "host", a.cfg.Host(), "version", about.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s (Firefly III %s).\n", a.cfg.Host(), about.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "server base url, saved to the config file")
	cmd.Flags().StringVar(&token, "token", "", "personal access token (prompted when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token for the configured server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := secrets.Default()
			if err != nil {
				return err
			}
			host := a.cfg.Host()
			if err := st.Delete(host); err != nil {
				if errors.Is(err, secrets.ErrNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "No token stored for %s.\n", host)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed token for %s.\n", host)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var (
		months int
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the local sqlite ledger with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := database.Setup(a.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.SeedDefaults(ctx, db); err != nil {
				return err
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			ledger := service.NewLedgerService(db, a.log.WithPrefix("ledger"))
			repos := testdata.Repos{
				Accounts: repository.NewAccountRepo(db),
				Budgets:  repository.NewBudgetRepo(db),
			}
			err = testdata.Seed(ctx, repos, ledger, time.Now(), months, rand.New(rand.NewSource(seed)))
			if errors.Is(err, testdata.ErrAlreadySeeded) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has accounts; nothing to do.\n", a.cfg.Database.Path)
				return nil
			}
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			a.log.Info("seeded ledger", "path", a.cfg.Database.Path, "months", months)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d months of demo data into %s.\n", months, a.cfg.Database.Path)
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 6, "months of history to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
