package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-checkout/config"
	grpcSvc "github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/grpc"
	httpSvc "github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka/consumer"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/infra/redis"
	repo "github.com/vogiaan1904/ticketbottle-checkout/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/checkoutrpc"
	pkgKafka "github.com/vogiaan1904/ticketbottle-checkout/pkg/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := redis.Connect(ctx, cfg.Redis, l)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(context.Background(), redisCli, l)

	evRepo := repo.NewRedisEventRepository(redisCli, l, cfg.Checkout.SettlementMaxRetries)
	orderRepo := repo.NewRedisOrderRepository(redisCli, l, cfg.Checkout.SettlementMaxRetries)

	gw := razorpay.NewClient(razorpay.ClientConfig{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	})

	// Kafka is optional; without it settlement still works but nothing is published.
	var (
		prod        producer.Producer
		kafkaConsGr sarama.ConsumerGroup
	)
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}
		prod = producer.NewProducer(kafkaSyncProd, l)
		defer prod.Close()

		kafkaConsGr, err = pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}
	} else {
		l.Warn(ctx, "Kafka is disabled; order notifications will not be published")
	}

	// Initialize services
	evSvc := service.NewEventService(evRepo, l)
	coSvc := service.NewCheckoutService(evRepo, gw, service.CheckoutConfig{
		Currency:       cfg.Razorpay.Currency,
		PriceTolerance: cfg.Checkout.PriceTolerance,
	}, l)
	stlSvc := service.NewSettlementService(orderRepo, gw, prod, service.SettlementConfig{
		Currency:       cfg.Razorpay.Currency,
		PriceTolerance: cfg.Checkout.PriceTolerance,
		WebhookSecret:  cfg.Razorpay.WebhookSecret,
		KeySecret:      cfg.Razorpay.KeySecret,
	}, l)
	ordSvc := service.NewOrderService(orderRepo, l)

	g, gCtx := errgroup.WithContext(ctx)

	// Payment-captured consumer
	if kafkaConsGr != nil {
		cons := consumer.NewConsumer(kafkaConsGr, stlSvc, l)
		if err := cons.Start(gCtx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
		g.Go(func() error {
			<-gCtx.Done()
			return cons.Close()
		})
	}

	// gRPC server
	lnr, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRpcPort))
	if err != nil {
		l.Fatalf(ctx, "gRPC server failed to listen: %v", err)
	}

	gRpcSrv := grpc.NewServer()
	checkoutrpc.RegisterCheckoutServiceServer(gRpcSrv, grpcSvc.NewGrpcService(evSvc, coSvc, ordSvc, l))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gRpcSrv, healthSrv)

	g.Go(func() error {
		l.Infof(ctx, "gRPC server is listening on port: %d", cfg.Server.GRpcPort)
		return gRpcSrv.Serve(lnr)
	})
	g.Go(func() error {
		<-gCtx.Done()
		healthSrv.Shutdown()
		gRpcSrv.GracefulStop()
		return nil
	})

	// HTTP server
	h := httpSvc.NewHTTPHandler(evSvc, coSvc, stlSvc, ordSvc, cfg.Razorpay.Currency, l)
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpSvc.NewRouter(h, cfg.JWT.Secret, l),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	l.Info(ctx, "Checkout service started")

	if err := g.Wait(); err != nil {
		l.Errorf(context.Background(), "Server stopped with error: %v", err)
	}

	l.Info(context.Background(), "Server exited")
}
