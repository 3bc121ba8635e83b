package app

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/portal-access/portal-access/internal/daemon"
	usercontroller "github.com/portal-access/portal-access/internal/db/controller/user"
	"github.com/portal-access/portal-access/internal/web/session"
)

func init() { //nolint: gochecknoinits
	sessionIssueCmd.Flags().Uint64Var(&sessionUserID, "user", 0, "User id the session belongs to (required)")
	_ = sessionIssueCmd.MarkFlagRequired("user")

	sessionCmd.AddCommand(sessionIssueCmd)
	rootCmd.AddCommand(sessionCmd)
}

var (
	sessionUserID uint64

	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Session helpers for development without the identity provider",
	}

	sessionIssueCmd = &cobra.Command{
		Use:   "issue",
		Short: "Write a session for a user into the mysql or postgres session table and print the cookie",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if !cfg.DevMode {
				return errors.New("session issue requires dev mode")
			}

			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			u, err := usercontroller.Get(db, sessionUserID)
			if err != nil {
				return err
			}

			store := session.New(daemon.NewSessionStorage(&cfg), cfg.Session.ExpiryTime)
			defer func() { _ = store.Close() }()

			id, err := session.GenerateSessionID()
			if err != nil {
				return err
			}

			if err := store.Write(id, session.Data{UserID: u.ID, Username: u.Username, IssuedAt: time.Now()}); err != nil {
				return err
			}

			fmt.Printf("%s=%s\n", cfg.Session.CookieName, id)

			return nil
		},
	}
)
