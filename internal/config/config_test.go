package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "glucotrack_db", cfg.Database.Database)
				assert.Equal(t, "user_sync_exchange", cfg.RabbitMQ.Exchange.Name)
				assert.Equal(t, "user_sync_queue", cfg.RabbitMQ.Queue.Name)
				assert.Equal(t, "whsec_test_secret", cfg.Clerk.WebhookSecret)
				assert.Equal(t, 3, cfg.Retry.MaxRetries)
				assert.Equal(t, 5*time.Minute, cfg.Retry.SweepInterval)
				assert.Equal(t, "glucotrack-api", cfg.App.Name)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "glucotrack_db",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "user_sync_exchange"},
			Queue:    QueueConfig{Name: "user_sync_queue"},
		},
		Clerk: ClerkConfig{WebhookSecret: "whsec_x"},
		Retry: RetryConfig{MaxRetries: 3, SweepInterval: 5 * time.Minute},
		Worker: WorkerConfig{
			Concurrency:     4,
			ShutdownTimeout: 30 * time.Second,
		},
	}
}

func TestValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "missing webhook secret",
			mutate:    func(c *Config) { c.Clerk.WebhookSecret = "" },
			wantErr:   true,
			errString: "clerk webhook secret is required",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "missing database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			wantErr:   true,
			errString: "database name is required",
		},
		{
			name:      "missing rabbitmq host",
			mutate:    func(c *Config) { c.RabbitMQ.Host = "" },
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name:      "missing exchange name",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			wantErr:   true,
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "missing queue name",
			mutate:    func(c *Config) { c.RabbitMQ.Queue.Name = "" },
			wantErr:   true,
			errString: "rabbitmq queue name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Worker.Concurrency = 0 },
			wantErr:   true,
			errString: "worker concurrency must be greater than 0",
		},
		{
			name:      "zero shutdown timeout",
			mutate:    func(c *Config) { c.Worker.ShutdownTimeout = 0 },
			wantErr:   true,
			errString: "worker shutdown_timeout",
		},
		{
			name:      "negative max retries",
			mutate:    func(c *Config) { c.Retry.MaxRetries = -1 },
			wantErr:   true,
			errString: "retry max_retries",
		},
		{
			name:      "zero sweep interval",
			mutate:    func(c *Config) { c.Retry.SweepInterval = 0 },
			wantErr:   true,
			errString: "retry sweep_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Retry.SweepInterval)
}
