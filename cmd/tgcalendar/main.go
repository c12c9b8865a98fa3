package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinbless/tgcalendar/internal/config"
	"github.com/jinbless/tgcalendar/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "tgcalendar",
	Short: "tgcalendar - Telegram calendar assistant",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot (telegram polling + oauth callback + daily report)",
	RunE:  runServe,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tgcalendar configuration status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Calendar: %s\n", cfg.SharedCalendarID)
	fmt.Printf("Timezone: %s\n", cfg.TimezoneName)
	fmt.Printf("Model: %s\n", cfg.OpenAIModel)
	fmt.Printf("Daily report: %s\n", cfg.DailyReportTime)
	fmt.Printf("OAuth callback port: %d\n", cfg.OAuthServerPort)
	fmt.Printf("Telegram token: %s\n", maskKey(cfg.TelegramToken))
	fmt.Printf("OpenAI key: %s\n", maskKey(cfg.OpenAIKey))
	fmt.Printf("Maps key: %s\n", maskKey(cfg.MapsAPIKey))
	fmt.Printf("Tokens dir: %s\n", cfg.TokensDir())

	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "set"
}
