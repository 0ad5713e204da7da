// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/fintrack/internal/model"
)

// Palette holds the colors of one display theme.
type Palette struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
	Subtle  lipgloss.Color
	Border  lipgloss.Color
	Income  lipgloss.Color
	Expense lipgloss.Color
}

var (
	// LightPalette is used with the light theme.
	LightPalette = Palette{
		Primary: lipgloss.Color("#2563EB"), // Blue
		Success: lipgloss.Color("#059669"),
		Warning: lipgloss.Color("#B45309"),
		Error:   lipgloss.Color("#DC2626"),
		Info:    lipgloss.Color("#0891B2"),
		Subtle:  lipgloss.Color("#6B7280"),
		Border:  lipgloss.Color("#D1D5DB"),
		Income:  lipgloss.Color("#16A34A"),
		Expense: lipgloss.Color("#DC2626"),
	}

	// DarkPalette is used with the dark theme.
	DarkPalette = Palette{
		Primary: lipgloss.Color("#60A5FA"),
		Success: lipgloss.Color("#4ECDC4"), // Teal
		Warning: lipgloss.Color("#FFE66D"), // Yellow
		Error:   lipgloss.Color("#FF6B6B"),
		Info:    lipgloss.Color("#95E1D3"),
		Subtle:  lipgloss.Color("#9CA3AF"),
		Border:  lipgloss.Color("#333333"),
		Income:  lipgloss.Color("#4ADE80"),
		Expense: lipgloss.Color("#F87171"),
	}
)

var (
	// TitleStyle is used for section titles.
	TitleStyle lipgloss.Style
	// SubtitleStyle is used for secondary headings.
	SubtitleStyle lipgloss.Style
	// SuccessStyle formats success messages.
	SuccessStyle lipgloss.Style
	// WarningStyle formats warning messages.
	WarningStyle lipgloss.Style
	// ErrorStyle formats error messages.
	ErrorStyle lipgloss.Style
	// InfoStyle formats informational messages.
	InfoStyle lipgloss.Style
	// SubtleStyle formats less prominent text.
	SubtleStyle lipgloss.Style
	// IncomeStyle colors positive amounts.
	IncomeStyle lipgloss.Style
	// ExpenseStyle colors negative amounts.
	ExpenseStyle lipgloss.Style
	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().Bold(true)
	// BoxStyle is used for bordered content boxes.
	BoxStyle lipgloss.Style
	// TableHeaderStyle is used for table headers.
	TableHeaderStyle lipgloss.Style
	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
	// PromptStyle is used for user prompts.
	PromptStyle lipgloss.Style

	current = model.ThemeLight
)

func init() {
	ApplyTheme(model.ThemeLight)
}

// ApplyTheme rebuilds the package styles from the palette of theme.
func ApplyTheme(theme model.Theme) {
	current = theme
	p := PaletteFor(theme)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary).MarginBottom(1)
	SubtitleStyle = lipgloss.NewStyle().Foreground(p.Subtle).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	InfoStyle = lipgloss.NewStyle().Foreground(p.Info)
	SubtleStyle = lipgloss.NewStyle().Foreground(p.Subtle)
	IncomeStyle = lipgloss.NewStyle().Foreground(p.Income)
	ExpenseStyle = lipgloss.NewStyle().Foreground(p.Expense)
	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(1, 2)
	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		PaddingRight(2)
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
}

// CurrentTheme returns the theme last passed to ApplyTheme.
func CurrentTheme() model.Theme {
	return current
}

// PaletteFor returns the palette of theme.
func PaletteFor(theme model.Theme) Palette {
	if theme == model.ThemeDark {
		return DarkPalette
	}
	return LightPalette
}

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	MoneyIcon   = "💰"
	CardIcon    = "💳"
	ChartIcon   = "📊"
	SyncIcon    = "🔄"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the money icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(MoneyIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}
