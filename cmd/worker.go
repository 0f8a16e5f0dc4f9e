package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aipod/src/audio"
	"aipod/src/infrastructure/integrations/gemini"
	jobinfra "aipod/src/infrastructure/job"
	"aipod/src/jobctrl"
	"aipod/src/log"
	"aipod/src/podcastctrl"
	"aipod/src/scriptgen"
	"aipod/src/speech"
	"aipod/src/thumbnail"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the podcast generation worker",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := watermill.NewStdLogger(false, false)

	db, err := openDatabase()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&podcastctrl.Podcast{}, &jobinfra.Job{}); err != nil {
		return err
	}

	artifacts, err := newArtifactStore(ctx)
	if err != nil {
		return err
	}

	podcasts, err := podcastctrl.NewPodcastService(db)
	if err != nil {
		return err
	}

	geminiClient, err := gemini.NewClient(ctx, viper.GetString("gemini.api_key"))
	if err != nil {
		return err
	}
	geminiClient.WithModels(
		viper.GetString("gemini.text_model"),
		viper.GetString("gemini.audio_model"),
		viper.GetString("gemini.image_model"),
	)

	scripts := scriptgen.NewGenerator(geminiClient)
	synthesizer := speech.NewGenerator(geminiClient)
	if male, female := viper.GetString("gemini.male_voice"), viper.GetString("gemini.female_voice"); male != "" || female != "" {
		if male == "" {
			male = speech.DefaultMaleVoice
		}
		if female == "" {
			female = speech.DefaultFemaleVoice
		}
		synthesizer.WithVoices(male, female)
	}

	var thumbnailer jobctrl.Thumbnailer
	if viper.GetBool("gemini.thumbnails") {
		thumbnailer = thumbnail.NewGenerator(geminiClient)
	}

	podcastTask := jobctrl.NewPodcastTask(
		podcasts,
		scripts,
		synthesizer,
		audio.NewCodec(),
		artifacts,
		thumbnailer,
	)

	// Initialize AMQP publisher
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return err
	}
	defer amqpPublisher.Close()

	// Initialize AMQP subscriber
	subscriberConfig := amqp.NewDurableQueueConfig(viper.GetString("amqp.url"))
	subscriberConfig.Consume.NoRequeueOnNack = true
	amqpSubscriber, err := amqp.NewSubscriber(
		subscriberConfig,
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return err
	}
	defer amqpSubscriber.Close()

	jobRepo, err := jobinfra.NewPostgresJobRepository(db)
	if err != nil {
		return err
	}
	jobService := jobinfra.NewJobService(amqpPublisher, jobRepo, logger, podcastTask)

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return err
	}

	jobTimeout, err := time.ParseDuration(viper.GetString("worker.job_timeout"))
	if err != nil {
		return err
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Timeout(jobTimeout),
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second,
			Logger:          logger,
		}.Middleware,
	)

	router.AddNoPublisherHandler(
		"job_processor",
		jobinfra.JobsTopic,
		amqpSubscriber,
		func(msg *message.Message) error {
			return jobService.ProcessJobMessage(msg)
		},
	)

	sweeper, err := startSweeper(ctx, podcasts)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	go func() {
		if err := router.Run(ctx); err != nil {
			log.Error(err, "Router stopped with error")
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	log.Info("Shutting down...")
	cancel()
	<-router.Running()
	log.Info("Router stopped")

	return nil
}

// startSweeper periodically fails podcasts stuck in the generating state,
// reconciling workers that died past the job timeout without a terminal
// write.
func startSweeper(ctx context.Context, podcasts *podcastctrl.PodcastService) (*cron.Cron, error) {
	interval := viper.GetString("sweeper.interval")
	maxAge, err := time.ParseDuration(viper.GetString("sweeper.max_age"))
	if err != nil {
		return nil, err
	}

	c := cron.New()
	_, err = c.AddFunc("@every "+interval, func() {
		swept, err := podcasts.SweepStale(ctx, maxAge)
		if err != nil {
			log.Error(err, "failed to sweep stale podcasts")
			return
		}
		if swept > 0 {
			log.Info("swept stale podcasts", "count", swept, "older_than", maxAge.String())
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
