package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ndelorme/cv-worth/internal/ai/gemini"
	"github.com/ndelorme/cv-worth/internal/logger"
	"github.com/ndelorme/cv-worth/internal/secrets"
	"github.com/ndelorme/cv-worth/internal/worth"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var consentPrompt = promptui.Select{
	Label: "Send this resume to the configured AI provider for analysis?",
	Items: []string{PromptYes, PromptNo},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <resume.txt>",
	Short: "Evaluate a resume text file and stream its market-value assessment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("country", "", "country the estimate is computed against")
	evaluateCmd.Flags().String("city", "", "city narrowing the market context")
	evaluateCmd.Flags().String("company-type", "", "company type (startup, public sector, ...)")
	evaluateCmd.Flags().String("company", "", "specific targeted company")
	evaluateCmd.Flags().BoolP("yes", "y", false, "skip the consent prompt")
	evaluateCmd.Flags().StringP("output", "o", "", "write the final report JSON to a file instead of stdout")
}

// evaluate is the main command for the cli.
func evaluate(cmd *cobra.Command, path string) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting cv-worth", zap.String("version", version))

	documentText, err := os.ReadFile(path)
	if err != nil {
		zlog.Fatal("reading resume file", zap.String("path", path), zap.Error(err))
	}

	if strings.TrimSpace(string(documentText)) == "" {
		zlog.Fatal("resume file is empty", zap.String("path", path))
	}

	if cmd.Flag("yes").Value.String() == "false" {
		_, consent, err := consentPrompt.Run()
		if err != nil {
			zlog.Fatal("exiting", zap.Error(err))
		}
		if consent != PromptYes {
			zlog.Info("exiting", zap.String("reason", "consent not given"))
			return
		}
	}

	generator, model, err := newGenerator(ctx, config.AI, zlog)
	if err != nil {
		zlog.Fatal("building the generator",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file in the configuration file or the GEMINI_API_KEY environment variable"),
		)
	}

	locale := worth.Locale{
		Language: config.DefaultLanguage,
		Currency: config.Currency,
		Country:  config.DefaultCountry,
		Tone:     config.Tone,
	}

	pipeline := worth.NewPipeline(generator, locale, zlog.With(logger.CommonFields("gemini", model)...))

	location := worth.LocationContext{
		Country:       cmd.Flag("country").Value.String(),
		City:          cmd.Flag("city").Value.String(),
		CompanyType:   cmd.Flag("company-type").Value.String(),
		CustomCompany: cmd.Flag("company").Value.String(),
	}

	report, err := pipeline.Evaluate(ctx, string(documentText), location, func(fragment string, _ worth.Result) {
		fmt.Print(fragment)
	})
	if err != nil {
		zlog.Fatal("evaluation failed", zap.Error(err))
	}
	fmt.Println()

	if err := writeReport(cmd.Flag("output").Value.String(), report); err != nil {
		zlog.Fatal("writing report", zap.Error(err))
	}
}

func newGenerator(ctx context.Context, cfg *AIConfig, zlog *zap.Logger) (*gemini.Generator, string, error) {
	var geminiCfg GeminiConfig
	if cfg != nil {
		provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
		if provider != "" && provider != "gemini" {
			return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
		}
		if cfg.Gemini != nil {
			geminiCfg = *cfg.Gemini
		}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiCfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, "", err
	}

	genLogger := zlog.With(logger.CommonFields("gemini", geminiCfg.Model)...)

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, genLogger)
	if err != nil {
		return nil, "", err
	}

	return generator, generator.Model(), nil
}

func writeReport(path string, report *worth.Report) error {
	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if path == "" {
		fmt.Println(string(pretty))
		return nil
	}

	if err := os.WriteFile(path, append(pretty, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}
