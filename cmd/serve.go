package cmd

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Vievek/zero-hunger-sub000/internal/events"
	"github.com/Vievek/zero-hunger-sub000/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the matching and assignment engine as a service",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config.NATS == nil || config.NATS.URL == "" {
		logger.Fatal("nats.url is required for serve",
			zap.String("hint", "the engine consumes donation lifecycle events from NATS"),
		)
	}

	comps, err := buildComponents(ctx, config, logger)
	if err != nil {
		logger.Fatal("building engine", zap.Error(err))
	}
	defer comps.close()

	logger.Info("starting the zerohunger engine", zap.String("version", version))

	subs := make([]*nats.Subscription, 0, 2)

	createdSub, err := comps.nc.Subscribe(events.SubjectDonationCreated, func(msg *nats.Msg) {
		event, err := events.Decode(msg.Data)
		if err != nil {
			logger.Warn("dropping malformed created event", zap.Error(err))
			return
		}
		comps.engine.HandleDonationCreated(event.DonationID)
	})
	if err != nil {
		logger.Fatal("subscribing to created events", zap.Error(err))
	}
	subs = append(subs, createdSub)

	acceptedSub, err := comps.nc.Subscribe(events.SubjectDonationAccepted, func(msg *nats.Msg) {
		event, err := events.Decode(msg.Data)
		if err != nil {
			logger.Warn("dropping malformed accepted event", zap.Error(err))
			return
		}
		if event.RecipientID == "" {
			logger.Warn("accepted event without recipient_id",
				zap.String("donation_id", event.DonationID))
			return
		}
		if err := comps.engine.Accept(ctx, event.DonationID, event.RecipientID); err != nil {
			logger.Warn("acceptance rejected",
				zap.String("donation_id", event.DonationID),
				zap.String("recipient_id", event.RecipientID),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		logger.Fatal("subscribing to accepted events", zap.Error(err))
	}
	subs = append(subs, acceptedSub)

	var metricsServer *http.Server
	if config.Metrics != nil && config.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: config.Metrics.Listen, Handler: mux}

		go func() {
			logger.Info("metrics listener started", zap.String("addr", config.Metrics.Listen))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	logger.Info("engine ready",
		zap.String("created_subject", events.SubjectDonationCreated),
		zap.String("accepted_subject", events.SubjectDonationAccepted),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		metricsServer.Shutdown(shutdownCtx)
		cancel()
	}

	comps.engine.Wait()
}
