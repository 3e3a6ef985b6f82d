package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// railorderHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func railorderHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateDate requires a YYYY-MM-DD date string.
func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// wizardSelectItem creates a huh form to select an item from an order.
func wizardSelectItem(ctx context.Context, app *App, orderID string, result *string) *huh.Form {
	items, err := app.Items.ListByOrder(ctx, orderID)
	if err != nil || len(items) == 0 {
		return nil
	}

	ordered := formatter.VersionOrder(items)
	options := make([]huh.Option[string], 0, len(ordered))
	for _, item := range ordered {
		label := fmt.Sprintf("v%s — %s", item.VersionLabel(), item.Title)
		if item.IsSimulation() {
			label += " (simulation)"
		}
		options = append(options, huh.NewOption(label, item.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which Item?").
				Options(options...).
				Value(result),
		),
	).WithTheme(railorderHuhTheme()).WithShowHelp(false)
}

// wizardInputDate creates a huh form for one required date input.
func wizardInputDate(title string, result *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("YYYY-MM-DD").
				Value(result).
				Validate(validateDate),
		),
	).WithTheme(railorderHuhTheme()).WithShowHelp(false)
}

// wizardInputText creates a huh form for a single optional text input.
func wizardInputText(title, placeholder string, result *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(result),
		),
	).WithTheme(railorderHuhTheme()).WithShowHelp(false)
}

// runSplitWizard walks the user through selecting a split target and
// range when flags were not given. Returns the chosen item ID, range
// bounds, and optional child title.
func runSplitWizard(ctx context.Context, app *App, orderID, itemID string) (string, string, string, string, error) {
	if itemID == "" {
		form := wizardSelectItem(ctx, app, orderID, &itemID)
		if form == nil {
			return "", "", "", "", fmt.Errorf("order has no items to split")
		}
		if err := form.Run(); err != nil {
			return "", "", "", "", err
		}
	}

	var from, to, title string
	if err := wizardInputDate("Extract from", &from).Run(); err != nil {
		return "", "", "", "", err
	}
	if err := wizardInputDate("Extract to", &to).Run(); err != nil {
		return "", "", "", "", err
	}
	if err := wizardInputText("Child title (optional)", "keep inherited title", &title).Run(); err != nil {
		return "", "", "", "", err
	}

	return itemID, from, to, title, nil
}
