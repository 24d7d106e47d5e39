package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content to a config.yaml in a temp dir, or returns a
// path that does not exist when content is empty
func writeConfig(t *testing.T, content string) string {
	tmpDir := t.TempDir()
	if content == "" {
		return filepath.Join(tmpDir, "nonexistent.yaml")
	}

	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadEmitterConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *EmitterConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  subject_prefix: "test.events"
  max_reconnects: 5
  reconnect_wait: "5s"
  connection_name: "test-connection"
ethereum:
  rpc_url: "http://localhost:8545"
  chain_id: "eip155:8453"
  factory_address: "0x00000000000000000000000000000000000000fa"
  start_block: 1000
  confirmations: 3
polling:
  batch_size: 100
  interval: "2s"
`,
			validate: func(t *testing.T, cfg *EmitterConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
				assert.Equal(t, "test.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, "eip155:8453", string(cfg.Ethereum.ChainID))
				assert.Equal(t, "0x00000000000000000000000000000000000000fa", cfg.Ethereum.FactoryAddress)
				assert.Equal(t, uint64(1000), cfg.Ethereum.StartBlock)
				assert.Equal(t, uint64(3), cfg.Ethereum.Confirmations)
				assert.Equal(t, uint64(100), cfg.Polling.BatchSize)
				assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
			},
		},
		{
			name: "config with defaults",
			configFile: `
ethereum:
  rpc_url: "http://localhost:8545"
  factory_address: "0x00000000000000000000000000000000000000fa"
`,
			validate: func(t *testing.T, cfg *EmitterConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, "COUPON_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, "coupons.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 24*time.Hour, cfg.NATS.DuplicateWindow)
				assert.Equal(t, "eip155:1", string(cfg.Ethereum.ChainID))
				assert.Equal(t, uint64(12), cfg.Ethereum.Confirmations)
				assert.Equal(t, 12*time.Second, cfg.Ethereum.BlockHeadTTL)
				assert.Equal(t, uint64(10000), cfg.Ethereum.LogStep)
				assert.Equal(t, uint64(2000), cfg.Polling.BatchSize)
				assert.Equal(t, 500, cfg.Polling.MaxAddressesPerQuery)
				assert.Equal(t, uint64(5), cfg.Polling.MaxRetries)
				assert.Equal(t, ":9091", cfg.Metrics.Address)
			},
		},
		{
			name: "unsupported chain",
			configFile: `
ethereum:
  rpc_url: "http://localhost:8545"
  chain_id: "eip155:999"
  factory_address: "0x00000000000000000000000000000000000000fa"
`,
			expectError: "unsupported chain",
		},
		{
			name: "missing rpc url",
			configFile: `
ethereum:
  factory_address: "0x00000000000000000000000000000000000000fa"
`,
			expectError: "ethereum.rpc_url is required",
		},
		{
			name: "missing factory address",
			configFile: `
ethereum:
  rpc_url: "http://localhost:8545"
`,
			expectError: "ethereum.factory_address is required",
		},
		{
			name: "invalid value",
			configFile: `
database:
  port: invalid
ethereum:
  rpc_url: "http://localhost:8545"
  factory_address: "0x00000000000000000000000000000000000000fa"
`,
			expectError: "failed to unmarshal config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadEmitterConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadIndexerConfig(t *testing.T) {
	tests := []struct {
		name       string
		configFile string
		validate   func(*testing.T, *IndexerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
nats:
  consumer_name: "indexer-test"
  ack_wait: "1m"
  max_deliver: 10
metadata:
  ipfs_gateways:
    - "https://gateway.example.com"
  workers: 2
metrics:
  address: ":9999"
`,
			validate: func(t *testing.T, cfg *IndexerConfig) {
				assert.Equal(t, "indexer-test", cfg.NATS.ConsumerName)
				assert.Equal(t, time.Minute, cfg.NATS.AckWait)
				assert.Equal(t, 10, cfg.NATS.MaxDeliver)
				assert.Equal(t, []string{"https://gateway.example.com"}, cfg.Metadata.IPFSGateways)
				assert.Equal(t, 2, cfg.Metadata.Workers)
				assert.Equal(t, ":9999", cfg.Metrics.Address)
			},
		},
		{
			name:       "missing config file uses defaults",
			configFile: "",
			validate: func(t *testing.T, cfg *IndexerConfig) {
				assert.Equal(t, "indexer", cfg.NATS.ConsumerName)
				assert.Equal(t, 30*time.Second, cfg.NATS.AckWait)
				assert.Equal(t, -1, cfg.NATS.MaxDeliver)
				assert.Equal(t, "COUPON_EVENTS", cfg.NATS.StreamName)
				assert.Len(t, cfg.Metadata.IPFSGateways, 2)
				assert.Equal(t, 8, cfg.Metadata.Workers)
				assert.Equal(t, 1024, cfg.Metadata.QueueSize)
				assert.Equal(t, 30*time.Second, cfg.Metadata.HTTPTimeout)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, ":9090", cfg.Metrics.Address)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadIndexerConfig(writeConfig(t, tt.configFile), t.TempDir())
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name       string
		configFile string
		validate   func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
server:
  host: "127.0.0.1"
  port: 9000
  read_timeout: 5
  cors_allowed_origins:
    - https://app.pushcola.xyz
database:
  host: primary
  read_host: replica
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, []string{"https://app.pushcola.xyz"}, cfg.Server.CORSAllowedOrigins)
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 5, cfg.Server.ReadTimeout)
				assert.Equal(t, 10, cfg.Server.WriteTimeout)
				assert.Equal(t, "replica", cfg.Database.ReadHost)
			},
		},
		{
			name:       "missing config file uses defaults",
			configFile: "",
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), t.TempDir())
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
		readDSN  string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
			readDSN:  "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
			readDSN:  "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
		{
			name: "read replica without port",
			config: DatabaseConfig{
				Host:     "primary",
				Port:     5432,
				ReadHost: "replica",
				User:     "user",
				Password: "pass",
				DBName:   "db",
				SSLMode:  "disable",
			},
			expected: "host=primary port=5432 user=user password=pass dbname=db sslmode=disable",
			readDSN:  "host=replica port=5432 user=user password=pass dbname=db sslmode=disable",
		},
		{
			name: "read replica with port",
			config: DatabaseConfig{
				Host:     "primary",
				Port:     5432,
				ReadHost: "replica",
				ReadPort: 6432,
				User:     "user",
				Password: "pass",
				DBName:   "db",
				SSLMode:  "disable",
			},
			expected: "host=primary port=5432 user=user password=pass dbname=db sslmode=disable",
			readDSN:  "host=replica port=6432 user=user password=pass dbname=db sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
			assert.Equal(t, tt.readDSN, tt.config.ReadDSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// godotenv.Overload sets real process variables; clear them afterwards
	keys := map[string]string{
		"COUPON_INDEXER_DEBUG":             "true",
		"COUPON_INDEXER_DATABASE_HOST":     "env-host",
		"COUPON_INDEXER_DATABASE_PORT":     "3306",
		"COUPON_INDEXER_DATABASE_USER":     "env-user",
		"COUPON_INDEXER_DATABASE_PASSWORD": "env-pass",
		"COUPON_INDEXER_DATABASE_DBNAME":   "env-db",
		"COUPON_INDEXER_DATABASE_SSLMODE":  "require",
	}
	var envContent string
	for k, v := range keys {
		envContent += k + "=" + v + "\n"
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))

	// Per-service overlay wins over the shared file
	require.NoError(t, os.WriteFile(
		filepath.Join(envDir, ".env.api.local"),
		[]byte("COUPON_INDEXER_DATABASE_DBNAME=api-db\n"),
		0600,
	))

	configPath := writeConfig(t, `
debug: false
database:
  host: file-host
  port: 5432
  user: file-user
  password: file-pass
  dbname: file-db
  sslmode: disable
`)

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, "api-db", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
}
