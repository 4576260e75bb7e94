/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	// Fixed-point scale used on the ledger wire (7 decimal places).
	DefaultLedgerDecimals = 7
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"RECEIVAI_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"RECEIVAI_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"RECEIVAI_SERVER_PORT"`
	// BaseURL is used to build shareable verification links.
	BaseURL string `json:"base_url" envconfig:"RECEIVAI_SERVER_BASE_URL"`
}

type DataSourceConfig struct {
	// Dns is the sqlite database path holding the persisted snapshots.
	Dns string `json:"dns" envconfig:"RECEIVAI_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	// Dns is optional; when set, live-mode mutations take a per-invoice lock.
	Dns string `json:"dns" envconfig:"RECEIVAI_REDIS_DNS"`
}

// LedgerConfig configures the remote contract ledger. DemoMode selects the
// local-snapshot strategy at construction time; no per-operation mode flag
// exists anywhere else.
type LedgerConfig struct {
	DemoMode        bool   `json:"demo_mode" envconfig:"RECEIVAI_LEDGER_DEMO_MODE"`
	RpcURL          string `json:"rpc_url" envconfig:"RECEIVAI_LEDGER_RPC_URL"`
	ContractID      string `json:"contract_id" envconfig:"RECEIVAI_LEDGER_CONTRACT_ID"`
	PollIntervalSec int    `json:"poll_interval_sec" envconfig:"RECEIVAI_LEDGER_POLL_INTERVAL_SEC"`
	MaxPollAttempts int    `json:"max_poll_attempts" envconfig:"RECEIVAI_LEDGER_MAX_POLL_ATTEMPTS"`
}

func (l LedgerConfig) PollInterval() time.Duration {
	return time.Duration(l.PollIntervalSec) * time.Second
}

// AdvisorConfig tunes the rule-based recommendation engine.
type AdvisorConfig struct {
	LowBalanceThreshold    int64 `json:"low_balance_threshold" envconfig:"RECEIVAI_ADVISOR_LOW_BALANCE_THRESHOLD"`
	UrgentBalanceThreshold int64 `json:"urgent_balance_threshold" envconfig:"RECEIVAI_ADVISOR_URGENT_BALANCE_THRESHOLD"`
	PendingReminderDays    int   `json:"pending_reminder_days" envconfig:"RECEIVAI_ADVISOR_PENDING_REMINDER_DAYS"`
	EarlyDiscountMinDays   int   `json:"early_discount_min_days" envconfig:"RECEIVAI_ADVISOR_EARLY_DISCOUNT_MIN_DAYS"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"RECEIVAI_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"RECEIVAI_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"RECEIVAI_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"RECEIVAI_PROJECT_NAME"`
	SeedDemoData bool             `json:"seed_demo_data" envconfig:"RECEIVAI_SEED_DEMO_DATA"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Ledger       LedgerConfig     `json:"ledger"`
	Advisor      AdvisorConfig    `json:"advisor"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("receivai", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called receivai.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "ReceivAI Server"
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Ledger.RpcURL = strings.TrimSpace(cnf.Ledger.RpcURL)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}
	if cnf.Server.BaseURL == "" {
		cnf.Server.BaseURL = "http://localhost:" + cnf.Server.Port
	}

	if cnf.DataSource.Dns == "" {
		cnf.DataSource.Dns = "receivai.db"
	}

	if !cnf.Ledger.DemoMode && cnf.Ledger.RpcURL == "" {
		log.Println("Error: ledger RPC URL is required outside demo mode.")
		return errors.New("ledger rpc url is required outside demo mode")
	}
	if !cnf.Ledger.DemoMode && cnf.Ledger.ContractID == "" {
		return errors.New("ledger contract id is required outside demo mode")
	}
	if cnf.Ledger.PollIntervalSec <= 0 {
		cnf.Ledger.PollIntervalSec = 1
	}
	if cnf.Ledger.MaxPollAttempts <= 0 {
		cnf.Ledger.MaxPollAttempts = 30
	}

	if cnf.Advisor.LowBalanceThreshold <= 0 {
		cnf.Advisor.LowBalanceThreshold = 10000
	}
	if cnf.Advisor.UrgentBalanceThreshold <= 0 {
		cnf.Advisor.UrgentBalanceThreshold = 20000
	}
	if cnf.Advisor.PendingReminderDays <= 0 {
		cnf.Advisor.PendingReminderDays = 3
	}
	if cnf.Advisor.EarlyDiscountMinDays <= 0 {
		cnf.Advisor.EarlyDiscountMinDays = 45
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if err := mockConfig.validateAndAddDefaults(); err != nil {
		log.Println(err)
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
