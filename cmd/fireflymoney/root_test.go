package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/fireflymoney/internal/database"
	"github.com/jask/fireflymoney/internal/database/repository"
	"github.com/jask/fireflymoney/internal/secrets"
)

func sandbox(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".state"))
	t.Setenv("FIREFLY_TOKEN", "")
	t.Setenv("FIREFLYMONEY_CONFIG", "")
	return home
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"login", "logout", "seed"})
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("backend"))
}

func TestSeedFillsLedgerOnce(t *testing.T) {
	home := sandbox(t)
	dbPath := filepath.Join(home, "ledger.db")
	cfgPath := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[database]\npath = \""+dbPath+"\"\n"), 0o600))

	out, err := execute(t, "", "--config", cfgPath, "seed", "--months", "2", "--seed", "7")
	require.NoError(t, err)
	require.Contains(t, out, "Seeded 2 months")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	accounts, err := repository.NewAccountRepo(db).List(context.Background(), repository.AccountAsset)
	require.NoError(t, err)
	require.NotEmpty(t, accounts)
	rows, err := repository.NewTransactionRepo(db).List(context.Background(), repository.TransactionFilters{})
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	out, err = execute(t, "", "--config", cfgPath, "seed")
	require.NoError(t, err)
	require.Contains(t, out, "already has accounts")

	_, err = os.Stat(filepath.Join(home, ".state", "fireflymoney", "fireflymoney.log"))
	require.NoError(t, err)
}

func TestLoginStoresTokenAndLogoutRemovesIt(t *testing.T) {
	home := sandbox(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
			return
		}
		if r.URL.Path != "/api/v1/about" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"version":"6.1.21","api_version":"2.1.0"}}`))
	}))
	defer srv.Close()
	cfgPath := filepath.Join(home, "config.toml")

	_, err := execute(t, "", "--config", cfgPath, "login", "--url", srv.URL, "--token", "bad-token")
	require.ErrorContains(t, err, "rejected the token")

	out, err := execute(t, "good-token\n", "--config", cfgPath, "login", "--url", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "Firefly III 6.1.21")

	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(raw), srv.URL)
	require.NotContains(t, string(raw), "good-token")

	st, err := secrets.Default()
	require.NoError(t, err)
	host := strings.TrimPrefix(srv.URL, "http://")
	tok, err := st.Get(host)
	require.NoError(t, err)
	require.Equal(t, "good-token", tok)

	out, err = execute(t, "", "--config", cfgPath, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Removed token")

	out, err = execute(t, "", "--config", cfgPath, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "No token stored")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	home := sandbox(t)
	cfgPath := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[ui]\ndefault_range = 5\n"), 0o600))

	_, err := execute(t, "", "--config", cfgPath, "--backend", "sqlite")
	require.ErrorContains(t, err, "ui.default_range")
}
