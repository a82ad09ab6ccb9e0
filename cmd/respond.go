package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Vievek/zero-hunger-sub000/internal/logger"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

const (
	PromptAccept  = "Accept"
	PromptDecline = "Decline"
	PromptBack    = "back"
)

var errExit = errors.New("exit requested")

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Interactively accept or decline open donations for a recipient",
	Run: func(cmd *cobra.Command, _ []string) {
		runRespond(cmd)
	},
}

func init() {
	rootCmd.AddCommand(respondCmd)

	respondCmd.Flags().StringP("recipient", "r", "", "recipient organization id responding to offers")
	respondCmd.MarkFlagRequired("recipient")
}

func runRespond(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	recipientID := cmd.Flag("recipient").Value.String()

	comps, err := buildComponents(ctx, config, logger)
	if err != nil {
		logger.Fatal("building engine", zap.Error(err))
	}
	defer comps.close()

	for {
		if err := respondOnce(ctx, comps, recipientID, logger); err != nil {
			if errors.Is(err, errExit) {
				comps.engine.Wait()
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func respondOnce(ctx context.Context, comps *components, recipientID string, logger *zap.Logger) error {
	donations, err := comps.store.ListDonationsByStatus(ctx, model.DonationActive)
	if err != nil {
		return fmt.Errorf("listing active donations: %w", err)
	}

	if len(donations) == 0 {
		logger.Info("no active donations to respond to")
		return errExit
	}

	items := make([]string, 0, len(donations)+1)
	for _, d := range donations {
		items = append(items, fmt.Sprintf("%s %s / %s / urgency=%s", d.ID, d.Title, d.Status, d.Urgency))
	}

	donationPrompt := promptui.Select{
		Label: "Choose a donation and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, selected, err := donationPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return errExit
	}

	donation := donations[idx]

	actionPrompt := promptui.Select{
		Label: "Respond?",
		Items: []string{PromptAccept, PromptDecline, PromptBack},
	}

	_, action, err := actionPrompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptAccept:
		if err := comps.engine.Accept(ctx, donation.ID, recipientID); err != nil {
			logger.Warn("acceptance rejected", zap.String("donation_id", donation.ID), zap.Error(err))
			return nil
		}
		logger.Info("donation accepted, assignment running in background",
			zap.String("donation_id", donation.ID))
	case PromptDecline:
		reasonPrompt := promptui.Prompt{Label: "Reason (optional)"}
		reason, err := reasonPrompt.Run()
		if err != nil {
			return err
		}
		if err := comps.engine.Decline(ctx, donation.ID, recipientID, reason); err != nil {
			logger.Warn("decline rejected", zap.String("donation_id", donation.ID), zap.Error(err))
		}
	case PromptBack:
	}

	return nil
}
