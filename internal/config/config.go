// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	RPCList         []string `mapstructure:"rpc_list"`
	ChainID         int64    `mapstructure:"chain_id"`
	ContractAddress string   `mapstructure:"contract_address"`
	WBTCAddress     string   `mapstructure:"wbtc_address"`
	USDCAddress     string   `mapstructure:"usdc_address"`
	PrivateKey      string   `mapstructure:"private_key"`

	PollInterval   time.Duration `mapstructure:"-"`
	PollIntervalMS int           `mapstructure:"poll_interval"`
	TxTimeout      time.Duration `mapstructure:"-"`
	TxTimeoutSec   int           `mapstructure:"tx_timeout"`
	Retries        int           `mapstructure:"retries"`

	DebugLogging  bool   `mapstructure:"debug_logging"`
	LogFile       string `mapstructure:"log_file"`
	LogBufferSize int    `mapstructure:"log_buffer_size"`

	PostgresURL string `mapstructure:"postgres_url"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Mainnet deployment of the escrow and its two tokens.
const (
	DefaultContractAddress = "0x99Ce4AA0dF3A96eCec203cf4F36BAc0A54122eAf"
	DefaultWBTCAddress     = "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"
	DefaultUSDCAddress     = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

const (
	DefaultChainID       = 1
	DefaultPollInterval  = 4000
	DefaultTxTimeout     = 300
	DefaultRetries       = 3
	DefaultLogFile       = "logs/hyperbet.log"
	DefaultLogBufferSize = 1000
	envPrefix            = "HYPERBET"
)

// LoadConfig reads the JSON config at path. An empty path skips the file and
// uses defaults plus environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"chain_id":         DefaultChainID,
		"contract_address": DefaultContractAddress,
		"wbtc_address":     DefaultWBTCAddress,
		"usdc_address":     DefaultUSDCAddress,
		"poll_interval":    DefaultPollInterval,
		"tx_timeout":       DefaultTxTimeout,
		"retries":          DefaultRetries,
		"log_file":         DefaultLogFile,
		"log_buffer_size":  DefaultLogBufferSize,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	cfg.PollInterval = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	cfg.TxTimeout = time.Duration(cfg.TxTimeoutSec) * time.Second

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasWallet reports whether a signing key is configured.
func (c *Config) HasWallet() bool {
	return c.PrivateKey != ""
}

// MaskedRPCList hides credentials embedded in RPC URLs (Infura project IDs,
// api-key query params) so the list can be logged.
func (c *Config) MaskedRPCList() []string {
	masked := make([]string, len(c.RPCList))
	for i, raw := range c.RPCList {
		masked[i] = maskURL(raw)
	}
	return masked
}

func maskURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	if parsed.User != nil {
		parsed.User = url.User("redacted")
	}
	if parsed.RawQuery != "" {
		parsed.RawQuery = "redacted"
	}
	segments := strings.Split(parsed.Path, "/")
	for i, s := range segments {
		if len(s) >= 24 {
			segments[i] = "redacted"
		}
	}
	parsed.Path = strings.Join(segments, "/")
	return parsed.String()
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http", "ws"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", maskURL(rpcURL), err)
		}
	}
	if cfg.ChainID <= 0 {
		return errors.New("invalid chain_id")
	}
	for name, addr := range map[string]string{
		"contract_address": cfg.ContractAddress,
		"wbtc_address":     cfg.WBTCAddress,
		"usdc_address":     cfg.USDCAddress,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s", name)
		}
	}
	if cfg.PrivateKey != "" {
		if err := validatePrivateKey(cfg.PrivateKey); err != nil {
			return err
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if cfg.PostgresURL != "" {
		if err := validateURLWithCache(cfg.PostgresURL, "postgres"); err != nil {
			return errors.New("postgres_url must use the postgres:// scheme")
		}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.PollIntervalMS <= 0 {
		return errors.New("invalid poll_interval")
	}
	if cfg.TxTimeoutSec <= 0 {
		return errors.New("invalid tx_timeout")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.LogBufferSize <= 0 {
		return errors.New("invalid log_buffer_size")
	}
	return nil
}

func validatePrivateKey(key string) error {
	raw := strings.TrimPrefix(strings.TrimSpace(key), "0x")
	if len(raw) != 64 {
		return errors.New("private_key must be 32 bytes of hex")
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return errors.New("private_key is not valid hex")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocols ...string) error {
	key := strings.Join(protocols, ",") + "|" + rawURL
	if _, ok := urlCache.Load(key); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	for _, protocol := range protocols {
		if strings.HasPrefix(parsed.Scheme, protocol) {
			urlCache.Store(key, parsed)
			return nil
		}
	}
	return errors.New("invalid URL protocol")
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if envKey := v.GetString("PRIVATE_KEY"); envKey != "" {
		cfg.PrivateKey = envKey
	}

	if envRPCList := v.GetString("RPC_LIST"); envRPCList != "" {
		var cleanRPCs []string
		for _, rpc := range strings.Split(envRPCList, ",") {
			if clean := strings.TrimSpace(rpc); clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}

	if envPG := v.GetString("POSTGRES_URL"); envPG != "" {
		cfg.PostgresURL = envPG
	}
}
