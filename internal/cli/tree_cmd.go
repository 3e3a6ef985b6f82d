package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var interactive bool
	var resolved bool

	cmd := &cobra.Command{
		Use:   "tree ORDER",
		Short: "Show the version tree of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			o, err := app.Orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			items, err := app.Items.ListByOrder(ctx, orderID)
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println("No items found.")
				return nil
			}

			detailFor := func(item *domain.OrderItem) string {
				if resolved {
					effective, err := app.Items.EffectiveValidity(ctx, item.ID)
					if err != nil {
						return "validity unavailable"
					}
					return formatter.FormatSegmentsPlain(effective)
				}
				return formatter.FormatSegmentsPlain(item.Validity)
			}

			if interactive && app.IsInteractive != nil && app.IsInteractive() {
				return runTreeBrowser(ctx, app, o, items)
			}

			fmt.Println(formatter.Header(fmt.Sprintf("%s [%s]", o.Name, o.ShortID)))
			fmt.Print(formatter.RenderTree(formatter.BuildVersionTree(items, detailFor)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&interactive, "interactive", false, "Browse the tree in a TUI")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Show resolved validity instead of stored segments")

	return cmd
}

// itemDetail renders the detail pane content for the tree browser.
func itemDetail(ctx context.Context, app *App, item *domain.OrderItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", formatter.Bold(item.Title), formatter.VariantBadge(item))
	fmt.Fprintf(&b, "Version:    v%s\n", item.VersionLabel())
	fmt.Fprintf(&b, "Stored:     %s\n", formatter.FormatSegmentsPlain(item.Validity))

	if effective, err := app.Items.EffectiveValidity(ctx, item.ID); err == nil {
		fmt.Fprintf(&b, "Effective:  %s\n", formatter.FormatSegmentsPlain(effective))
	}
	if item.TrainPlanID != nil {
		fmt.Fprintf(&b, "Plan:       %s\n", *item.TrainPlanID)
	}
	if item.TrafficPeriodID != nil {
		fmt.Fprintf(&b, "Calendar:   %s\n", *item.TrafficPeriodID)
	}
	if item.MergeStatus != domain.MergeNone {
		fmt.Fprintf(&b, "Merge:      %s\n", item.MergeStatus)
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:       %s\n", strings.Join(item.Tags, ", "))
	}
	return b.String()
}
