package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/alexanderramin/railorder/internal/contract"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/spf13/cobra"
)

// resolveItemID finds an item within an order by version label ("1.2"),
// exact UUID, or UUID prefix.
func resolveItemID(ctx context.Context, app *App, orderID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("item reference is required")
	}

	items, err := app.Items.ListByOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	label := strings.TrimPrefix(input, "v")
	for _, item := range items {
		if item.VersionLabel() == label {
			return item.ID, nil
		}
	}

	for _, item := range items {
		if item.ID == input {
			return item.ID, nil
		}
	}

	var matches []string
	for _, item := range items {
		if strings.HasPrefix(item.ID, input) {
			matches = append(matches, item.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("item not found in order: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("item ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// parseSegmentList parses "2025-01-01..2025-01-31,2025-03-01..2025-03-15".
func parseSegmentList(s string) ([]domain.ValiditySegment, error) {
	var out []domain.ValiditySegment
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "..", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid segment %q, expected START..END", part)
		}
		start, err := parseDate(bounds[0])
		if err != nil {
			return nil, err
		}
		end, err := parseDate(bounds[1])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ValiditySegment{Start: start, End: end})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no segments given")
	}
	return out, nil
}

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage order items and their validity",
	}

	cmd.AddCommand(
		newItemAddCmd(app),
		newItemListCmd(app),
		newItemInspectCmd(app),
		newItemSplitCmd(app),
		newItemRemoveCmd(app),
	)

	return cmd
}

func newItemAddCmd(app *App) *cobra.Command {
	var title, start, end, segments, plan, calendar string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add ORDER",
		Short: "Add an item to an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}

			item := &domain.OrderItem{
				OrderID: orderID,
				Title:   title,
				Tags:    tags,
			}
			if start != "" {
				d, err := parseDate(start)
				if err != nil {
					return err
				}
				item.Start = &d
			}
			if end != "" {
				d, err := parseDate(end)
				if err != nil {
					return err
				}
				item.End = &d
			}
			if segments != "" {
				segs, err := parseSegmentList(segments)
				if err != nil {
					return err
				}
				item.Validity = segs
			}
			if plan != "" {
				item.TrainPlanID = &plan
			}
			if calendar != "" {
				item.TrafficPeriodID = &calendar
			}

			if err := app.Items.Create(ctx, item); err != nil {
				return err
			}

			fmt.Printf("Created item %s v%s\n", item.Title, item.VersionLabel())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Item title")
	cmd.Flags().StringVar(&start, "start", "", "Schedule window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Schedule window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&segments, "segments", "", "Explicit validity segments (START..END, comma separated)")
	cmd.Flags().StringVar(&plan, "plan", "", "Train plan ID")
	cmd.Flags().StringVar(&calendar, "calendar", "", "Traffic period ID")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tags (repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list ORDER",
		Short: "List items of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
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

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					formatter.VersionLabel(item),
					item.Title,
					formatter.VariantBadge(item),
					formatter.FormatSegments(item.Validity),
					formatter.TruncID(item.ID),
				})
			}
			fmt.Print(formatter.RenderTable(
				[]string{"VERSION", "TITLE", "VARIANT", "VALIDITY", "UUID"}, rows))
			return nil
		},
	}
}

func newItemInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ORDER ITEM",
		Short: "Show item details including resolved validity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			itemID, err := resolveItemID(ctx, app, orderID, args[1])
			if err != nil {
				return err
			}
			item, err := app.Items.GetByID(ctx, itemID)
			if err != nil {
				return err
			}
			effective, err := app.Items.EffectiveValidity(ctx, itemID)
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s %s\n", formatter.Bold(item.Title), formatter.VariantBadge(item))
			fmt.Fprintf(&b, "Version:    v%s\n", item.VersionLabel())
			fmt.Fprintf(&b, "Stored:     %s\n", formatter.FormatSegments(item.Validity))
			fmt.Fprintf(&b, "Effective:  %s\n", formatter.FormatSegmentsPlain(effective))
			if item.Start != nil && item.End != nil {
				fmt.Fprintf(&b, "Window:     %s..%s\n",
					item.Start.Format(domain.DateLayout), item.End.Format(domain.DateLayout))
			}
			if item.TrainPlanID != nil {
				fmt.Fprintf(&b, "Plan:       %s\n", *item.TrainPlanID)
			}
			if item.TrafficPeriodID != nil {
				fmt.Fprintf(&b, "Calendar:   %s\n", *item.TrafficPeriodID)
			}
			if item.GeneratedRefID != nil {
				fmt.Fprintf(&b, "Generated:  %s\n", *item.GeneratedRefID)
			}
			if item.MergeStatus != domain.MergeNone {
				fmt.Fprintf(&b, "Merge:      %s", item.MergeStatus)
				if item.MergeTargetID != nil {
					fmt.Fprintf(&b, " -> %s", *item.MergeTargetID)
				}
				b.WriteString("\n")
			}
			if len(item.Tags) > 0 {
				fmt.Fprintf(&b, "Tags:       %s\n", strings.Join(item.Tags, ", "))
			}
			fmt.Fprintf(&b, "Updated:    %s\n", formatter.HumanTimestamp(item.UpdatedAt))

			fmt.Println(formatter.RenderBox("Item", strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
}

func newItemSplitCmd(app *App) *cobra.Command {
	var from, to, segments, title, plan, calendar string
	var tags []string

	cmd := &cobra.Command{
		Use:   "split ORDER ITEM",
		Short: "Carve a validity range into a new child version",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var itemID string
			if len(args) == 2 {
				itemID, err = resolveItemID(ctx, app, orderID, args[1])
				if err != nil {
					return err
				}
			}

			// Wizard fallback on a terminal when the target or range is
			// not given on the command line.
			if (itemID == "" || (from == "" && segments == "")) &&
				app.IsInteractive != nil && app.IsInteractive() {
				itemID, from, to, title, err = runSplitWizard(ctx, app, orderID, itemID)
				if err != nil {
					return err
				}
			}
			if itemID == "" {
				return fmt.Errorf("item reference is required")
			}

			req := contract.SplitRequest{OrderID: orderID, ItemID: itemID}

			if segments != "" {
				segs, err := parseSegmentList(segments)
				if err != nil {
					return err
				}
				req.Segments = segs
			} else {
				if from == "" || to == "" {
					return fmt.Errorf("either --segments or both --from and --to are required")
				}
				start, err := parseDate(from)
				if err != nil {
					return err
				}
				end, err := parseDate(to)
				if err != nil {
					return err
				}
				req.RangeStart = &start
				req.RangeEnd = &end
			}

			patch := &contract.ItemPatch{}
			patched := false
			if title != "" {
				patch.Title = &title
				patched = true
			}
			if plan != "" {
				patch.TrainPlanID = &plan
				patched = true
			}
			if calendar != "" {
				patch.TrafficPeriodID = &calendar
				patched = true
			}
			if len(tags) > 0 {
				patch.Tags = tags
				patched = true
			}
			if patched {
				req.Patch = patch
			}

			result, err := app.Split.Split(ctx, req)
			if err != nil {
				return err
			}

			fmt.Printf("Created %s v%s  %s\n",
				result.Created.Title, result.Created.VersionLabel(),
				formatter.FormatSegmentsPlain(result.Created.Validity))
			fmt.Printf("Retained %s v%s  %s\n",
				result.Original.Title, result.Original.VersionLabel(),
				formatter.FormatSegmentsPlain(result.Original.Validity))
			if result.SyncFailure != nil {
				fmt.Printf("%s\n", formatter.StyleYellow.Render(
					"Warning: calendar sync failed: "+result.SyncFailure.Error()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&segments, "segments", "", "Explicit segments to extract (START..END, comma separated)")
	cmd.Flags().StringVar(&title, "title", "", "Title for the new child")
	cmd.Flags().StringVar(&plan, "plan", "", "Relink the child to this train plan")
	cmd.Flags().StringVar(&calendar, "calendar", "", "Link the child to this traffic period")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tags for the new child (repeatable)")

	return cmd
}

func newItemRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ORDER ITEM",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			itemID, err := resolveItemID(ctx, app, orderID, args[1])
			if err != nil {
				return err
			}
			if err := app.Items.Delete(ctx, itemID); err != nil {
				return err
			}
			fmt.Printf("Removed item %s\n", itemID)
			return nil
		},
	}
}
