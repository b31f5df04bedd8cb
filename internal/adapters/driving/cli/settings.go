package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file.

Environment variables such as OPENAI_API_KEY, QDRANT_URL or DATABASE_URL
override the file when set.`,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	Args:        cobra.NoArgs,
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one dotted setting key. Run "docrag settings keys" for the list.

Examples:
  docrag settings set chunker.preset semantic
  docrag settings set llm.temperature 0.2
  docrag settings set llm.api_key -    # prompt without echo`,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	Args:        cobra.ExactArgs(2),
	RunE:        runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:         "unset [key]",
	Short:       "Remove a setting so its default applies",
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	Args:        cobra.ExactArgs(1),
	RunE:        runSettingsUnset,
}

var settingsPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	Args:        cobra.NoArgs,
	RunE:        runSettingsPath,
}

var settingsKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List settable keys",
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	Args:        cobra.NoArgs,
	RunE:        runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:         "wizard",
	Short:       "Interactive provider setup",
	Long:        `Choose the embedding and LLM providers and enter their API keys.`,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	Args:        cobra.NoArgs,
	RunE:        runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Printf("Owner:      %s\n", s.OwnerID)
	if s.DataDir != "" {
		cmd.Printf("Data dir:   %s\n", s.DataDir)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", s.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", s.Embedding.Model)
	if s.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.Embedding.BaseURL)
	}
	printKey(cmd, s.Embedding.Provider, s.Embedding.APIKey)
	cmd.Printf("  Batch size: %d\n", s.Embedding.BatchSize)
	cmd.Printf("  Cache size: %d\n", s.Embedding.CacheSize)
	cmd.Printf("  Status: %s\n", configured(s.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", s.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", s.LLM.Model)
	if s.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.LLM.BaseURL)
	}
	printKey(cmd, s.LLM.Provider, s.LLM.APIKey)
	cmd.Printf("  Max tokens: %d\n", s.LLM.MaxTokens)
	cmd.Printf("  Temperature: %.2f\n", s.LLM.Temperature)
	cmd.Printf("  Status: %s\n", configured(s.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", s.VectorStore.Backend)
	if s.VectorStore.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  URL: %s\n", s.VectorStore.URL)
	}
	cmd.Printf("  Collection: %s\n", s.VectorStore.Collection)
	cmd.Println()

	cmd.Println("[Blob Storage]")
	if s.Blob.IsConfigured() {
		cmd.Printf("  Endpoint: %s\n", s.Blob.Endpoint)
		cmd.Printf("  Bucket: %s\n", s.Blob.Bucket)
		cmd.Printf("  Access key: %s\n", maskAPIKey(s.Blob.AccessKey))
	} else {
		cmd.Println("  Status: not configured (files kept in memory)")
	}
	cmd.Println()

	cmd.Println("[Database]")
	if s.Database.URL != "" {
		cmd.Println("  PostgreSQL: configured")
	} else {
		cmd.Println("  SQLite (local)")
	}
	cmd.Println()

	cmd.Println("[Chunker]")
	cmd.Printf("  Preset: %s\n", s.Chunker.Preset)
	cmd.Printf("  Chunk size: %d\n", s.Chunker.ChunkSize)
	cmd.Printf("  Overlap: %d\n", s.Chunker.ChunkOverlap)

	return nil
}

func printKey(cmd *cobra.Command, p domain.AIProvider, key string) {
	if !p.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if value == "-" {
		cmd.Printf("%s: ", key)
		value = readPassword(cmd, bufio.NewReader(cmd.InOrStdin()))
		cmd.Println()
	}
	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if isSecretKey(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "access_key") ||
		strings.HasSuffix(key, "secret_key") || key == "database.url"
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return err
	}
	cmd.Printf("%s unset\n", args[0])
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("docrag setup")
	cmd.Println("============")
	cmd.Println()

	if err := configureProvider(cmd, reader, "embedding", domain.AllEmbeddingProviders()); err != nil {
		return err
	}
	cmd.Println()
	if err := configureProvider(cmd, reader, "llm", domain.AllLLMProviders()); err != nil {
		return err
	}

	cmd.Println()
	cmd.Printf("Settings saved to %s\n", settingsService.Path())
	return nil
}

// configureProvider asks for a provider, model and API key under prefix.
func configureProvider(cmd *cobra.Command, reader *bufio.Reader, prefix string, providers []domain.AIProvider) error {
	cmd.Printf("Select %s provider:\n", prefix)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Printf("Choice [1]: ")
	choice := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[choice-1]

	if err := settingsService.Set(prefix+".provider", provider.String()); err != nil {
		return err
	}

	cmd.Printf("Model (blank keeps current): ")
	if model := readLine(reader); model != "" {
		if err := settingsService.Set(prefix+".model", model); err != nil {
			return err
		}
	}

	if provider.RequiresAPIKey() {
		cmd.Printf("API key (blank keeps current): ")
		key := readPassword(cmd, reader)
		cmd.Println()
		if key != "" {
			if err := settingsService.Set(prefix+".api_key", key); err != nil {
				return err
			}
		}
	} else {
		cmd.Printf("Base URL [http://localhost:11434]: ")
		url := readLine(reader)
		if url == "" {
			url = "http://localhost:11434"
		}
		if err := settingsService.Set(prefix+".base_url", url); err != nil {
			return err
		}
	}
	return nil
}

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

// readPassword reads without echo from a terminal, otherwise a plain line.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
