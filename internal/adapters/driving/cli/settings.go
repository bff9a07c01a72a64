package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, extraction and maintenance settings.

Use subcommands to write the defaults or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings to the config file",
	RunE:  runSettingsInit,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(styles.Title.Render("Current Settings"))
	cmd.Println()

	cmd.Println(styles.Subtitle.Render("[Chunking]"))
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println(styles.Subtitle.Render("[Extraction]"))
	cmd.Printf("  Minimum PDF text: %d characters\n", settings.Extraction.MinTextChars)
	cmd.Printf("  PDF fallbacks: %s\n", strings.Join(settings.Extraction.PDFFallbacks, ", "))
	cmd.Printf("  HTML mode: %s\n", settings.Extraction.HTMLMode)
	cmd.Printf("  Max upload: %d bytes\n", settings.Extraction.MaxUploadBytes)
	cmd.Println()

	cmd.Println(styles.Subtitle.Render("[Maintenance]"))
	cmd.Printf("  Driver: %s\n", settings.Maintenance.Driver)
	if settings.Maintenance.DSN != "" {
		cmd.Printf("  DSN: %s\n", maskDSN(settings.Maintenance.DSN))
	} else {
		cmd.Printf("  DSN: (not set)\n")
	}
	cmd.Println()

	cmd.Println(styles.Subtitle.Render("[Server]"))
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	defaults := domain.DefaultAppSettings()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Default settings written.")
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(styles.Title.Render("sercha-ingest Settings Wizard"))
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println(styles.Subtitle.Render("Step 1: Chunking"))
	cmd.Printf("Chunk size [%d]: ", settings.Chunking.ChunkSize)
	settings.Chunking.ChunkSize = parseNumber(readLine(reader), settings.Chunking.ChunkSize)
	cmd.Printf("Overlap [%d]: ", settings.Chunking.Overlap)
	settings.Chunking.Overlap = parseNumber(readLine(reader), settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println(styles.Subtitle.Render("Step 2: Extraction"))
	cmd.Printf("Minimum PDF text characters [%d]: ", settings.Extraction.MinTextChars)
	settings.Extraction.MinTextChars = parseNumber(readLine(reader), settings.Extraction.MinTextChars)
	modes := []domain.HTMLMode{domain.HTMLModeText, domain.HTMLModeMarkdown}
	cmd.Println("HTML mode:")
	for i, m := range modes {
		cmd.Printf("  %d. %s\n", i+1, m)
	}
	cmd.Print("Enter choice [1]: ")
	settings.Extraction.HTMLMode = modes[parseChoice(readLine(reader), len(modes), 1)-1]
	cmd.Println()

	cmd.Println(styles.Subtitle.Render("Step 3: Maintenance"))
	drivers := []domain.StoreDriver{domain.StoreDriverPostgres, domain.StoreDriverSQLite}
	for i, d := range drivers {
		cmd.Printf("  %d. %s\n", i+1, d)
	}
	cmd.Print("Enter choice [1]: ")
	settings.Maintenance.Driver = drivers[parseChoice(readLine(reader), len(drivers), 1)-1]
	cmd.Print("Connection string (leave empty to keep): ")
	if dsn := readPassword(cmd.InOrStdin(), reader); dsn != "" {
		settings.Maintenance.DSN = dsn
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		cmd.Printf("%s %v\n", styles.Error.Render("Invalid settings:"), err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println(styles.Success.Render("All settings are valid and saved."))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parseNumber(input string, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

// maskDSN hides the password in a URL or key=value connection string.
func maskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return u.Redacted()
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}
