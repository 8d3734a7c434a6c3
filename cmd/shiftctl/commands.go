package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/config"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
	exportService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/export"
	gridService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/grid"
)

func tokenCmd() *cobra.Command {
	var userID, name, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := user.Role(role)
			switch r {
			case user.RoleAdmin, user.RoleScheduler, user.RoleSupervisor, user.RoleCleaner:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			svc := jwt.NewJWTService(app.cfg.JWT.Secret, app.cfg.JWT.AccessExpiration)
			token, expiresAt, err := svc.GenerateAccessToken(userID, name, r)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Println(token)
			app.logger.Info("token issued", zap.String("user_id", userID), zap.String("role", role),
				zap.Time("expires_at", time.Unix(expiresAt, 0)))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Staff id to embed")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(user.RoleScheduler), "Role: admin, scheduler, supervisor or cleaner")
	cmd.MarkFlagRequired("user")
	return cmd
}

// parseWeek reads a --week flag, defaulting to the current week.
func parseWeek(raw string) (timeutil.Date, error) {
	now := time.Now().In(app.cfg.Location())
	if raw == "" {
		return timeutil.DateOf(now).StartOfWeek(), nil
	}
	d, err := timeutil.ParseDate(raw, now)
	if err != nil {
		return timeutil.Date{}, err
	}
	return d.StartOfWeek(), nil
}

func newGridService() *gridService.GridServiceImpl {
	return gridService.NewGridService(app.shifts, app.staff, app.leaves, app.cfg.Policy.AssignableRoles, app.logger)
}

func gridCmd() *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the staff by day grid for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseWeek(week)
			if err != nil {
				return err
			}
			if err := app.loadStore(); err != nil {
				return err
			}
			g, err := newGridService().Week(app.ctx, operator(), start)
			if err != nil {
				return fmt.Errorf("failed to build grid: %w", err)
			}
			printGrid(g)
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "Any date in the week (YYYY-MM-DD or \"05 MAR\")")
	return cmd
}

func printGrid(g grid.Grid) {
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	header := []string{"STAFF"}
	for _, d := range g.Days {
		header = append(header, d.ShortLabel())
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range g.Rows {
		name := row.Staff.Name
		if row.IsActiveSomewhere {
			name += " *"
		}
		line := []string{name}
		for _, cell := range row.Cells {
			var parts []string
			switch {
			case cell.OnApprovedLeave:
				parts = append(parts, "LEAVE")
			case cell.OnPendingLeave:
				parts = append(parts, "leave?")
			}
			for _, s := range cell.Shifts {
				parts = append(parts, fmt.Sprintf("%s-%s", s.StartTime, s.EndTime))
			}
			if len(parts) == 0 {
				parts = []string{"-"}
			}
			line = append(line, strings.Join(parts, " "))
		}
		fmt.Fprintln(w, strings.Join(line, "\t"))
	}
	w.Flush()
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule to files",
	}
	cmd.AddCommand(exportWeekCmd())
	cmd.AddCommand(exportCalendarCmd())
	return cmd
}

func newExportService() *exportService.ExportServiceImpl {
	return exportService.NewExportService(newGridService(), app.shifts, app.staff, app.cfg.Location(), nil, app.logger)
}

func exportWeekCmd() *cobra.Command {
	var week, out string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Write the week grid as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseWeek(week)
			if err != nil {
				return err
			}
			if err := app.loadStore(); err != nil {
				return err
			}
			buf, filename, err := newExportService().WeekXLSX(app.ctx, operator(), start)
			if err != nil {
				return fmt.Errorf("failed to export week: %w", err)
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "Any date in the week")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default schedule_<week>.xlsx)")
	return cmd
}

func exportCalendarCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "calendar STAFF_ID",
		Short: "Write a staff member's published shifts as an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadStore(); err != nil {
				return err
			}
			ics, err := newExportService().StaffCalendar(app.ctx, operator(), args[0])
			if err != nil {
				return fmt.Errorf("failed to export calendar: %w", err)
			}
			if out == "" {
				fmt.Print(ics)
				return nil
			}
			return os.WriteFile(out, []byte(ics), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default stdout)")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report double bookings and leave clashes among upcoming shifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadStore(); err != nil {
				return err
			}
			shifts, err := app.shifts.All(app.ctx)
			if err != nil {
				return err
			}
			staffIDs := make(map[string]struct{})
			var from, to timeutil.Date
			for i, s := range shifts {
				for _, id := range s.StaffIDs {
					staffIDs[id] = struct{}{}
				}
				if i == 0 || s.Date.Before(from) {
					from = s.Date
				}
				if i == 0 || to.Before(s.Date) {
					to = s.Date
				}
			}
			ids := make([]string, 0, len(staffIDs))
			for id := range staffIDs {
				ids = append(ids, id)
			}
			leaves, err := app.leaves.ListByUsersAndRange(app.ctx, ids, from, to)
			if err != nil {
				return err
			}

			findings := conflict.NewDetector().Scan(shifts, leaves)
			if len(findings) == 0 {
				fmt.Printf("No conflicts across %d shifts\n", len(shifts))
				return nil
			}
			for _, f := range findings {
				fmt.Printf("%s: %s\n", f.ShiftID, f.Conflict)
			}
			return fmt.Errorf("%d conflicts found", len(findings))
		},
	}
}

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with the scheduling policy file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:         "validate FILE",
		Short:       "Validate a scheduling policy file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.LoadPolicy(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Policy OK: %d service types, auto-publish %v, assignable roles %v\n",
				len(p.ServiceTypes), p.AutoPublish, p.AssignableRoles)
			return nil
		},
	})
	return cmd
}
