package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newVariantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variant",
		Short: "Manage productive and simulation variants",
	}

	cmd.AddCommand(
		newVariantBranchCmd(app),
		newVariantPromoteCmd(app),
		newVariantMergeCmd(app),
	)

	return cmd
}

func resolveVariantTarget(ctx context.Context, app *App, orderRef, itemRef string) (string, string, error) {
	orderID, err := resolveOrderID(ctx, app, orderRef)
	if err != nil {
		return "", "", err
	}
	itemID, err := resolveItemID(ctx, app, orderID, itemRef)
	if err != nil {
		return "", "", err
	}
	return orderID, itemID, nil
}

func newVariantBranchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "branch ORDER ITEM",
		Short: "Clone a productive item into a simulation variant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, itemID, err := resolveVariantTarget(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			result, err := app.Variants.Branch(ctx, orderID, itemID)
			if err != nil {
				return err
			}

			fmt.Printf("Branched %s into simulation %s %s\n",
				result.Base.Title,
				formatter.TruncID(result.Simulation.ID),
				formatter.VariantBadge(result.Simulation))
			return nil
		},
	}
}

func newVariantPromoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "promote ORDER ITEM",
		Short: "Make a simulation the productive variant of its group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, itemID, err := resolveVariantTarget(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			result, err := app.Variants.Promote(ctx, orderID, itemID)
			if err != nil {
				return err
			}

			fmt.Printf("Promoted %s %s\n",
				result.Promoted.Title, formatter.VariantBadge(result.Promoted))
			for _, demoted := range result.Demoted {
				fmt.Printf("Demoted %s %s\n",
					demoted.Title, formatter.VariantBadge(demoted))
			}
			return nil
		},
	}
}

func newVariantMergeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "merge ORDER ITEM",
		Short: "Reconcile a simulation into its productive lineage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, itemID, err := resolveVariantTarget(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			result, err := app.Variants.Merge(ctx, orderID, itemID)
			if err != nil {
				return err
			}

			fmt.Printf("Merge outcome: %s\n", formatter.Bold(string(result.Outcome)))
			fmt.Printf("Target: %s v%s %s\n",
				result.Target.Title, result.Target.VersionLabel(),
				formatter.VariantBadge(result.Target))
			fmt.Printf("Simulation marked %s\n", result.Simulation.MergeStatus)
			if result.SyncFailure != nil {
				fmt.Printf("%s\n", formatter.StyleYellow.Render(
					"Warning: calendar sync failed: "+result.SyncFailure.Error()))
			}
			return nil
		},
	}
}
