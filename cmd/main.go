package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/eaglebank/ledger-service/internal/command"
	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/handler"
	"github.com/eaglebank/ledger-service/internal/query"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/events"
	"github.com/eaglebank/ledger-service/shared/middleware"
	redisClient "github.com/eaglebank/ledger-service/shared/redis"
	"github.com/eaglebank/ledger-service/shared/utils"
)

const (
	serviceName   = "ledger-service"
	consumerGroup = "ledger-service-group"
)

type stores struct {
	ledger    repository.LedgerStore
	customers repository.CustomerRepository
	loans     repository.LoanRepository
	db        *sql.DB
}

func main() {
	cfg, err := config.Load(os.Getenv("LEDGER_CONFIG"))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	middleware.MustInitJWTSecret()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	if st.db != nil {
		defer st.db.Close()
	}

	// Redis is optional: without it there is no view cache and no events.
	var (
		redis     *redisClient.Client
		publisher command.Publisher = events.NopPublisher{}
	)
	if cfg.RedisEnabled() {
		redis, err = redisClient.NewClient(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()
		publisher = events.NewPublisher(redis.Client, serviceName, cfg.Redis.StreamMaxLen)
	} else {
		log.Printf("REDIS_ADDR is empty: caching and events disabled")
	}

	ids, err := utils.NewIDGenerator(cfg.NodeID)
	if err != nil {
		log.Fatalf("Failed to create id generator: %v", err)
	}
	rate, err := cfg.Policy.InterestRate()
	if err != nil {
		log.Fatalf("Invalid loan interest rate: %v", err)
	}

	var cache *goredis.Client
	if redis != nil {
		cache = redis.Client
	}
	readRepo := repository.NewTransactionReadRepository(st.ledger, cache)

	// CQRS: command side
	accountCmds := command.NewAccountCommandService(st.ledger, st.customers, publisher, cfg.Policy)
	customerCmds := command.NewCustomerCommandService(st.customers, st.ledger, accountCmds, cfg.Policy)
	txCmds := command.NewTransactionCommandService(st.ledger, readRepo, ids, publisher)
	loanCmds := command.NewLoanCommandService(st.loans, st.customers, publisher, rate)

	// CQRS: query side
	accountQry := query.NewAccountQueryService(st.ledger, st.customers, readRepo, cfg.Policy.RecentTransactions)
	txQry := query.NewTransactionQueryService(st.ledger, readRepo)
	loanQry := query.NewLoanQueryService(st.loans)
	customerQry := query.NewCustomerQueryService(st.customers)

	if redis != nil {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    consumerGroup,
			Consumer: cfg.Redis.ConsumerName,
			Stream:   events.UserEventsStream,
			Handler:  customerCmds.HandleUserEvent,
		})
		go func() {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("User event subscriber stopped: %v", err)
			}
		}()
	}

	customerHandler := handler.NewCustomerHandler(customerCmds, customerQry, accountQry)
	accountHandler := handler.NewAccountHandler(accountCmds, accountQry)
	transactionHandler := handler.NewTransactionHandler(txCmds, txQry)
	loanHandler := handler.NewLoanHandler(loanCmds, loanQry)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		if redis != nil {
			if err := redis.Healthy(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": cfg.StoreDriver, "redis": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.StoreDriver})
	})

	v1 := router.Group("/v1", middleware.AuthMiddleware())
	{
		v1.POST("/customers/profile", customerHandler.EnsureProfile)
		v1.GET("/customers/profile", customerHandler.GetProfile)
		v1.PATCH("/customers/profile", customerHandler.UpdateProfile)
		v1.GET("/dashboard", customerHandler.Dashboard)

		accounts := v1.Group("/accounts")
		accounts.POST("", accountHandler.CreateAccount)
		accounts.GET("", accountHandler.ListAccounts)
		accounts.GET("/:accountId", accountHandler.GetAccount)
		accounts.GET("/:accountId/balance", accountHandler.GetBalance)
		accounts.GET("/:accountId/reconciliation", accountHandler.Reconcile)
		accounts.POST("/:accountId/deactivate", accountHandler.DeactivateAccount)
		accounts.POST("/:accountId/deposits", transactionHandler.Deposit)
		accounts.POST("/:accountId/withdrawals", transactionHandler.Withdraw)
		accounts.POST("/:accountId/transfers", transactionHandler.Transfer)
		accounts.GET("/:accountId/transactions", transactionHandler.ListTransactions)
		accounts.GET("/:accountId/transactions/:transactionId", transactionHandler.GetTransaction)

		loans := v1.Group("/loans")
		loans.POST("", loanHandler.ApplyLoan)
		loans.GET("", loanHandler.ListLoans)
		loans.GET("/:loanId", loanHandler.GetLoan)
		loans.POST("/:loanId/approve", middleware.AdminOnly(), loanHandler.ApproveLoan)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Ledger service starting on port %s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	var (
		db      *sql.DB
		dialect repository.Dialect
		err     error
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Printf("Using in-memory store: data is lost on restart")
		return &stores{
			ledger:    repository.NewMemoryLedgerStore(),
			customers: repository.NewMemoryCustomerRepository(),
			loans:     repository.NewMemoryLoanRepository(),
		}, nil
	case config.DriverSQLite:
		dialect = repository.SQLite
		db, err = repository.OpenSQLite(ctx, cfg.SQLitePath)
	default:
		dialect = repository.Postgres
		db, err = repository.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		ledger:    repository.NewSQLLedgerStore(db, dialect),
		customers: repository.NewSQLCustomerRepository(db, dialect),
		loans:     repository.NewSQLLoanRepository(db, dialect),
		db:        db,
	}, nil
}
