package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	appusers "github.com/bryanwahyu/lexilens/internal/application/users"
	"github.com/bryanwahyu/lexilens/internal/infra/auth"
	"github.com/bryanwahyu/lexilens/internal/infra/db"
	"github.com/bryanwahyu/lexilens/internal/infra/db/migrations"
	"github.com/bryanwahyu/lexilens/internal/infra/db/sqlstore"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user; the password is read from the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		svc, closeDB, err := openUsers(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		u, err := svc.Register(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Email)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeDB, err := openUsers(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		list, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tACTIVE\tCREATED")
		for _, u := range list {
			fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", u.ID, u.Email, u.IsActive, u.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

func openUsers(ctx context.Context) (*appusers.Service, func(), error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, dialect, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := prepare(ctx, sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	svc := &appusers.Service{
		Repo:   sqlstore.NewUserRepository(sqlDB, dialect),
		Hasher: auth.NewHasher(cfg.Auth.BcryptCost),
	}
	return svc, func() { sqlDB.Close() }, nil
}

func prepare(ctx context.Context, sqlDB *sql.DB, dialect sqlstore.Dialect) error {
	if err := db.Ping(ctx, sqlDB); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return migrations.Up(sqlDB, dialect)
}

// promptPassword reads without echo from a terminal, or one line from a pipe.
func promptPassword(in io.Reader, w io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
