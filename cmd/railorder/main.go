package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/railorder/internal/cli"
	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.railorder/railorder.db
	dbPath := os.Getenv("RAILORDER_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".railorder", "railorder.db")
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	orderRepo := repository.NewSQLiteOrderRepo(database)
	itemRepo := repository.NewSQLiteOrderItemRepo(database)
	periodRepo := repository.NewSQLiteTrafficPeriodRepo(database)
	yearRepo := repository.NewSQLiteTimetableYearRepo(database)
	planRepo := repository.NewSQLiteTrainPlanRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Observe use cases on stderr when requested.
	var observers []service.UseCaseObserver
	if os.Getenv("RAILORDER_LOG") != "" {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	// Wire services
	syncSvc := service.NewCalendarSyncService(periodRepo, observers...)

	app := &cli.App{
		Orders:   service.NewOrderService(orderRepo),
		Items:    service.NewItemService(orderRepo, itemRepo, periodRepo, yearRepo),
		Split:    service.NewSplitService(orderRepo, itemRepo, periodRepo, yearRepo, planRepo, syncSvc, uow, observers...),
		Variants: service.NewVariantService(orderRepo, itemRepo, planRepo, uow, observers...),
		Periods:  periodRepo,
	}

	// Detect interactive terminal for wizard fallbacks.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
