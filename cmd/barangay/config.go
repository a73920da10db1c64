package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"barangay/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig(prefix string) (*types.Config, error) {
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.GatewayURL == "" {
		return nil, fmt.Errorf("set GATEWAY_URL")
	}

	if c.GatewayTimeoutSec == 0 {
		c.GatewayTimeoutSec = 30
	}

	switch c.ImageBackend {
	case types.ImageBackendGateway:
	case types.ImageBackendS3:
		if c.S3Bucket == "" {
			return nil, fmt.Errorf("set S3_BUCKET when IMAGE_BACKEND is s3")
		}
	default:
		return nil, fmt.Errorf("unknown IMAGE_BACKEND %q", c.ImageBackend)
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

func newLogger(c *types.Config, formatter logrus.Formatter) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(formatter)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithError(err).Warnf("invalid LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
