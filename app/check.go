package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/cache"
	"github.com/portal-access/portal-access/internal/daemon"
)

func init() { //nolint: gochecknoinits
	f := checkCmd.Flags()
	f.Uint64Var(&checkUserID, "user", 0, "User id to resolve for (required)")
	f.StringVar(&checkQuery.Dashboard, "dashboard", "", "Dashboard id")
	f.StringVar(&checkQuery.Page, "page", "", "Page id of the dashboard")
	f.StringVar(&checkQuery.Feature, "feature", "", "Feature key")
	f.StringVar(&checkQuery.Action, "action", "", "Feature action or CRUD verb")
	f.StringVar(&checkQuery.CRUDResource, "crud", "", "CRUD resource")
	f.StringVar(&checkQuery.Department, "department", "", "Department the resource belongs to")
	f.StringVar(&checkCapability, "capability", "", "read, write, view or delete; empty asks whether it can be opened")
	f.StringVar(&checkPath, "path", "", "Route path to check instead of a query")
	f.Uint64Var(&checkPolicyID, "policy", 0, "Policy id to resolve the document permission of")

	_ = checkCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(checkCmd)
}

var (
	checkUserID     uint64
	checkQuery      access.Query
	checkCapability string
	checkPath       string
	checkPolicyID   uint64

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Resolve an access query, a route or a policy permission for a user",
		Example: `  portal-access check --user 1 --dashboard employee_management --page directory
  portal-access check --user 1 --feature reports --action export_report
  portal-access check --user 1 --path /finance/invoices
  portal-access check --user 1 --policy 3`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			svc := auth.NewService(db, cache.NewMemory(1, time.Second))
			ctx := cmd.Context()

			var out any

			switch {
			case checkPolicyID > 0:
				_, perm, err := svc.PolicyPermission(ctx, checkUserID, checkPolicyID)
				if err != nil {
					return err
				}

				out = perm
			case checkPath != "":
				allowed, err := svc.CanNavigate(ctx, checkUserID, checkPath)
				if err != nil {
					return err
				}

				out = map[string]any{"path": access.NormalizePath(checkPath), "allowed": allowed}
			default:
				checkQuery.Capability = access.Capability(checkCapability)
				if !checkQuery.Capability.Valid() {
					return fmt.Errorf("invalid capability %q", checkCapability)
				}

				d, err := svc.Check(ctx, checkUserID, checkQuery)
				if err != nil {
					return err
				}

				out = d
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(out)
		},
	}
)
