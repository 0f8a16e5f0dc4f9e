package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "aipod/handler/http"
	jobctrl "aipod/src/infrastructure/job"
	"aipod/src/log"
	"aipod/src/podcastctrl"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the podcast API server",
	Long:  `The serve command starts the HTTP server that accepts podcast generation requests and serves podcast records.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&podcastctrl.Podcast{}, &jobctrl.Job{}); err != nil {
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

	// The API only enqueues; job execution lives in the worker.
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return err
	}
	defer amqpPublisher.Close()

	jobRepo, err := jobctrl.NewPostgresJobRepository(db)
	if err != nil {
		return err
	}
	jobService := jobctrl.NewJobService(amqpPublisher, jobRepo, watermill.NewStdLogger(false, false), nil)

	podcastHandler, err := httpHdlr.NewPodcastHandler(podcasts, jobService, artifacts)
	if err != nil {
		return err
	}

	// Setup gin router
	r := gin.Default()

	api := r.Group("/api/v1")
	api.POST("/podcasts", podcastHandler.Create)
	api.GET("/podcasts/my-podcasts", podcastHandler.ListMine)
	api.GET("/podcasts/discover", podcastHandler.Discover)
	api.GET("/podcasts/:id", podcastHandler.Get)
	api.GET("/podcasts/:id/status", podcastHandler.Status)
	api.PATCH("/podcasts/:id/publish", podcastHandler.Publish)
	api.DELETE("/podcasts/:id", podcastHandler.Delete)

	// Local artifacts are served straight off the filesystem.
	if viper.GetString("storage.mode") == "local" {
		r.Static("/storage/podcasts", viper.GetString("storage.path"))
	}

	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			os.Exit(1)
		}
	}()
	log.Info("API server listening", "port", viper.GetString("server.port"))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
	return nil
}
