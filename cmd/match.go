package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Vievek/zero-hunger-sub000/internal/logger"
)

var matchCmd = &cobra.Command{
	Use:   "match <donation-id>",
	Short: "Rank recipients for one donation and write its offers",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runMatch(args[0])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(donationID string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	comps, err := buildComponents(ctx, config, logger)
	if err != nil {
		logger.Fatal("building engine", zap.Error(err))
	}
	defer comps.close()

	if err := comps.selector.Match(ctx, donationID); err != nil {
		logger.Fatal("matching failed", zap.String("donation_id", donationID), zap.Error(err))
	}
}
