package cli

import (
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Orders   service.OrderService
	Items    service.ItemService
	Split    service.SplitService
	Variants service.VariantService

	// Periods backs the read-only calendar inspection commands. The
	// write path to traffic periods goes through the services only.
	Periods repository.TrafficPeriodRepo

	// IsInteractive reports whether stdin is a terminal. Commands fall
	// back to wizard prompts only when it returns true.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "railorder" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "railorder",
		Short: "Transport order versioning and validity manager",
	}

	root.AddCommand(
		newOrderCmd(app),
		newItemCmd(app),
		newVariantCmd(app),
		newTreeCmd(app),
		newCalendarCmd(app),
	)

	return root
}
