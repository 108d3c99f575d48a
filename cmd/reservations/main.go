package main

import (
	availabilityhandler "reservio/internal/availability/handler"
	availabilityservice "reservio/internal/availability/service"
	reservationhandler "reservio/internal/reservations/handler"
	reservationrepository "reservio/internal/reservations/repository"
	reservationservice "reservio/internal/reservations/service"
	reservationvalidator "reservio/internal/reservations/validator"
	tablehandler "reservio/internal/tables/handler"
	tablerepository "reservio/internal/tables/repository"
	tableservice "reservio/internal/tables/service"
	tablevalidator "reservio/internal/tables/validator"
	"reservio/pkg/app"
	"reservio/pkg/config"
	"reservio/pkg/contracts"
	"reservio/pkg/kafka"
	kafka_config "reservio/pkg/kafka/config"
	"reservio/pkg/lock"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Reservations service")

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(cfg.GracefulShutdown)

	handlers := initServices(cfg, serverApp)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) []contracts.Handler {
	tableRepo := tablerepository.NewTableRepository(cfg)
	tableService := tableservice.NewTableService(tableRepo, tablevalidator.NewTableValidator(cfg.Log), cfg)

	reservationRepo := reservationrepository.NewReservationRepository(cfg)
	reservationService := reservationservice.NewReservationService(
		reservationRepo,
		lock.NewRedis(cfg.Client.Redis, cfg.Log),
		tableService,
		reservationvalidator.NewReservationValidator(cfg.Log),
		initPublisher(cfg, serverApp),
		cfg,
	)

	availabilityService := availabilityservice.NewAvailabilityService(tableService, reservationRepo, cfg)

	cfg.Log.Info("Reservation services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		reservationhandler.NewReservationHandler(reservationService, cfg),
		tablehandler.NewTableHandler(tableService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
	}
}

// initPublisher returns nil when no brokers are configured; the service then
// runs without eventing.
func initPublisher(cfg *config.Config, serverApp *app.Application) reservationservice.EventPublisher {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka disabled, reservation events will not be published")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Kafka producer initialized", "topic", kafkaCfg.Topic, "brokers", kafkaCfg.Brokers)
	return producer
}
