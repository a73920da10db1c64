package main

import (
	"context"
	"fmt"
	"time"

	"barangay/internal/complaint"
	"barangay/internal/events"
	"barangay/internal/gateway"
	"barangay/internal/guard"
	"barangay/internal/metrics"
	"barangay/internal/records"
	"barangay/internal/session"
	"barangay/internal/storage"
	"barangay/internal/store"
	"barangay/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// portal is every component wired together, shared by the commands.
type portal struct {
	config *types.Config
	logger *logrus.Logger

	metrics    *metrics.Metrics
	gateway    *gateway.Client
	store      *store.Store
	records    *records.Facade
	sessions   *session.Manager
	complaints *complaint.Manager

	closers []func() error
}

func newPortal(ctx context.Context, cCtx *cli.Context, formatter logrus.Formatter) (*portal, error) {
	config, err := loadConfig(cCtx.String("env-prefix"))
	if err != nil {
		return nil, err
	}

	logger := newLogger(config, formatter)

	m := metrics.New()

	client := gateway.NewClient(config.GatewayURL, time.Duration(config.GatewayTimeoutSec)*time.Second, logger).Observe(m)

	var uploader complaint.ImageUploader = client
	if config.ImageBackend == types.ImageBackendS3 {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}

		uploader = storage.NewS3Uploader(s3.NewFromConfig(awsConfig), config.S3Bucket, config.S3KeyPrefix, config.S3PublicBaseURL)
	}

	st := store.New(client, logger)
	m.Register(metrics.StoreGauge(st.Generation))

	p := &portal{
		config:  config,
		logger:  logger,
		metrics: m,
		gateway: client,
		store:   st,
	}

	g := guard.New()
	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		p.closers = append(p.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, in-flight guard is local until it recovers")
		}
		cancel()

		g.Share(rdb, time.Duration(config.GuardTTLSec)*time.Second, logger)
	}

	p.records = records.New(client, st, g, logger)
	p.sessions = session.NewManager(st, p.records, g, logger, session.Options{
		BcryptCost:           config.BcryptCost,
		AllowLegacyPasswords: config.AllowLegacyPasswords,
	})
	p.complaints = complaint.NewManager(client, p.records, uploader, st, g, logger)

	if config.AMQPURL != "" {
		publisher := events.NewAMQPPublisher(config.AMQPURL, config.EventsExchange, logger)
		p.closers = append(p.closers, publisher.Close)
		p.complaints.PublishTo(publisher)
	}

	if err := st.Reload(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	return p, nil
}

func (p *portal) Close() {
	for _, closer := range p.closers {
		if err := closer(); err != nil {
			p.logger.WithError(err).Warn("failed to close connection")
		}
	}
}

var loginFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "username",
		Aliases:  []string{"u"},
		Usage:    "Admin username",
		EnvVars:  []string{"BARANGAY_USERNAME"},
		Required: true,
	},
	&cli.StringFlag{
		Name:    "password",
		Usage:   "Admin password",
		EnvVars: []string{"BARANGAY_PASSWORD"},
	},
	&cli.StringFlag{
		Name:    "admin-id",
		Usage:   "Admin ID",
		EnvVars: []string{"BARANGAY_ADMIN_ID"},
	},
}

// login signs in with the admin credentials given on the command line.
func (p *portal) login(cCtx *cli.Context) (*types.Account, error) {
	account, err := p.sessions.Login(session.Credentials{
		Username: cCtx.String("username"),
		Password: cCtx.String("password"),
		UserType: types.UserTypeAdmin,
		AdminID:  cCtx.String("admin-id"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	return account, nil
}
