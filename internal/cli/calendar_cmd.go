package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/validity"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect traffic period calendars",
	}

	cmd.AddCommand(
		newCalendarAddCmd(app),
		newCalendarInspectCmd(app),
	)

	return cmd
}

func newCalendarAddCmd(app *App) *cobra.Command {
	var name, year, dates string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a traffic period",
		RunE: func(cmd *cobra.Command, args []string) error {
			var included []time.Time
			for _, part := range strings.Split(dates, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if strings.Contains(part, "..") {
					segs, err := parseSegmentList(part)
					if err != nil {
						return err
					}
					expanded, err := validity.ExpandToDates(segs)
					if err != nil {
						return err
					}
					included = append(included, expanded...)
					continue
				}
				d, err := parseDate(part)
				if err != nil {
					return err
				}
				included = append(included, d)
			}
			if len(included) == 0 {
				return fmt.Errorf("at least one operating date is required")
			}

			p := &domain.TrafficPeriod{
				ID:                 uuid.New().String(),
				Name:               name,
				TimetableYearLabel: year,
				Rules: []domain.TrafficPeriodRule{
					{ValidityStart: included[0], IncludedDates: included},
				},
			}
			if err := app.Periods.Create(context.Background(), p); err != nil {
				return err
			}

			fmt.Printf("Created traffic period %s (%d operating days)\n", p.Name, len(included))
			fmt.Printf("ID: %s\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Period name")
	cmd.Flags().StringVar(&year, "year", "", "Timetable year label")
	cmd.Flags().StringVar(&dates, "dates", "", "Operating dates (YYYY-MM-DD or START..END ranges, comma separated)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("dates")

	return cmd
}

func newCalendarInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PERIOD",
		Short: "Show a traffic period's rules and exclusions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := app.Periods.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s\n", formatter.Bold(p.Name))
			if p.TimetableYearLabel != "" {
				fmt.Fprintf(&b, "Year:        %s\n", p.TimetableYearLabel)
			}

			operating := p.OperatingDates()
			fmt.Fprintf(&b, "Operating:   %s\n", formatter.FormatSegmentsPlain(validity.FromDates(operating)))
			fmt.Fprintf(&b, "Rules:       %d\n", len(p.Rules))

			if len(p.ExcludedDates) > 0 {
				excl := make([]string, len(p.ExcludedDates))
				for i, d := range p.ExcludedDates {
					excl[i] = d.Format(domain.DateLayout)
				}
				fmt.Fprintf(&b, "Excluded:    %s\n", strings.Join(excl, ", "))
			}

			fmt.Println(formatter.RenderBox("Traffic Period", strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
}
