package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func resolveOrderID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("order ID is required")
	}

	orders, err := app.Orders.List(ctx, true)
	if err != nil {
		return "", err
	}

	// 1. Exact short ID match (case-insensitive)
	for _, o := range orders {
		if strings.EqualFold(o.ShortID, input) {
			return o.ID, nil
		}
	}

	// 2. Exact UUID match
	for _, o := range orders {
		if o.ID == input {
			return o.ID, nil
		}
	}

	// 3. UUID prefix match
	var matches []string
	for _, o := range orders {
		if strings.HasPrefix(o.ID, input) {
			matches = append(matches, o.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("order not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("order ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage transport orders",
	}

	cmd.AddCommand(
		newOrderAddCmd(app),
		newOrderListCmd(app),
		newOrderInspectCmd(app),
		newOrderUpdateCmd(app),
		newOrderArchiveCmd(app),
		newOrderRemoveCmd(app),
	)

	return cmd
}

func newOrderAddCmd(app *App) *cobra.Command {
	var name, shortID, customer, year string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new order",
		RunE: func(cmd *cobra.Command, args []string) error {
			o := &domain.Order{
				ID:                 uuid.New().String(),
				ShortID:            strings.ToUpper(shortID),
				Name:               name,
				CustomerRef:        customer,
				TimetableYearLabel: year,
				Status:             domain.OrderActive,
			}

			if err := app.Orders.Create(context.Background(), o); err != nil {
				return err
			}

			fmt.Printf("Created order %s [%s]\n", o.Name, o.ShortID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID (e.g. ORD01)")
	cmd.Flags().StringVar(&name, "name", "", "Order name")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer reference")
	cmd.Flags().StringVar(&year, "year", "", "Timetable year label (e.g. 2025)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func newOrderListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.Orders.List(context.Background(), all)
			if err != nil {
				return err
			}

			if len(orders) == 0 {
				fmt.Println("No orders found.")
				return nil
			}

			rows := make([][]string, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []string{
					o.ShortID,
					o.Name,
					o.TimetableYearLabel,
					formatter.StatusColor(o.Status).Render(string(o.Status)),
					formatter.TruncID(o.ID),
				})
			}
			fmt.Print(formatter.RenderTable(
				[]string{"ID", "NAME", "YEAR", "STATUS", "UUID"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived orders")

	return cmd
}

func newOrderInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show order details and item versions",
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

			var b strings.Builder
			fmt.Fprintf(&b, "%s %s\n", formatter.Bold(o.Name), formatter.Dim("["+o.ShortID+"]"))
			fmt.Fprintf(&b, "Status:    %s\n", formatter.StatusColor(o.Status).Render(string(o.Status)))
			fmt.Fprintf(&b, "Year:      %s\n", o.TimetableYearLabel)
			if o.CustomerRef != "" {
				fmt.Fprintf(&b, "Customer:  %s\n", o.CustomerRef)
			}
			fmt.Fprintf(&b, "Updated:   %s\n", formatter.HumanTimestamp(o.UpdatedAt))

			if len(items) > 0 {
				b.WriteString("\n" + formatter.Header("Items") + "\n")
				tree := formatter.BuildVersionTree(items, func(item *domain.OrderItem) string {
					return formatter.FormatSegmentsPlain(item.Validity)
				})
				b.WriteString(formatter.RenderTree(tree))
			}

			fmt.Println(formatter.RenderBox("Order", strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
}

func newOrderUpdateCmd(app *App) *cobra.Command {
	var name, shortID, customer, year, status string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an order",
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

			if cmd.Flags().Changed("id") {
				o.ShortID = strings.ToUpper(shortID)
			}
			if cmd.Flags().Changed("name") {
				o.Name = name
			}
			if cmd.Flags().Changed("customer") {
				o.CustomerRef = customer
			}
			if cmd.Flags().Changed("year") {
				o.TimetableYearLabel = year
			}
			if cmd.Flags().Changed("status") {
				o.Status = domain.OrderStatus(status)
			}
			o.UpdatedAt = time.Now()

			if err := app.Orders.Update(ctx, o); err != nil {
				return err
			}

			fmt.Printf("Updated order %s [%s]\n", o.Name, o.ShortID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID")
	cmd.Flags().StringVar(&name, "name", "", "Order name")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer reference")
	cmd.Flags().StringVar(&year, "year", "", "Timetable year label")
	cmd.Flags().StringVar(&status, "status", "", "Order status (draft|active|closed)")

	return cmd
}

func newOrderArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID",
		Short: "Archive an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Orders.Archive(ctx, orderID); err != nil {
				return err
			}
			fmt.Printf("Archived order %s\n", orderID)
			return nil
		},
	}
}

func newOrderRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an archived order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			orderID, err := resolveOrderID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Orders.Delete(ctx, orderID); err != nil {
				return err
			}
			fmt.Printf("Removed order %s\n", orderID)
			return nil
		},
	}
}
