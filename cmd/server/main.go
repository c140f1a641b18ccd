package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"tasktracker/broker"
	"tasktracker/config"
	"tasktracker/database"
	"tasktracker/metrics"
	"tasktracker/routes"
	"tasktracker/services"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("tasktracker", registry)

	producer, consumer, closeBroker := setupBroker(cfg)

	eventHandlerService := services.NewEventHandlerService(db, producer, cfg.EventPollInterval, m)
	eventHandlerService.Start()

	webSocketService := services.NewWebSocketService(consumer, nil, m)
	webSocketService.Start()

	router := routes.SetupRouter(cfg, db, services.TaskServiceInstance, webSocketService, m)

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server is running on port %s", cfg.AppPort)
		if cfg.AuthEnabled() {
			log.Println("Bearer token authentication is enabled for /api")
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("Shutting down HTTP server...")
				return server.Shutdown(ctx)
			},
			"event-pipeline": func(ctx context.Context) error {
				log.Println("Stopping event dispatcher and websocket hub...")
				eventHandlerService.Stop()
				webSocketService.Stop()
				closeBroker()
				return nil
			},
		},
	)

	exitCode := <-wait
	db.Close()
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// setupBroker connects to NATS, falling back to an in-process broker so the
// server still runs without one.
func setupBroker(cfg config.Config) (broker.Producer, broker.Consumer, func()) {
	conn, err := broker.Connect(cfg.NatsURL)
	if err == nil {
		consumer, subErr := broker.NewNatsConsumer(conn, broker.TaskEventsSubject)
		if subErr == nil {
			producer := broker.NewNatsProducer(conn)
			log.Printf("Connected to NATS at %s", cfg.NatsURL)
			return producer, consumer, func() {
				consumer.Close()
				producer.Close()
				conn.Close()
			}
		}
		err = subErr
		conn.Close()
	}

	log.Printf("Warning: NATS unavailable (%v), using in-process event broker", err)
	local := broker.NewLocalBroker()
	consumer := local.Subscribe(broker.TaskEventsSubject)
	return local, consumer, func() {
		consumer.Close()
		local.Close()
	}
}
