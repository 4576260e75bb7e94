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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receivai.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInitConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"project_name": "receivai test",
		"server": {"port": "6001"},
		"ledger": {"demo_mode": true}
	}`)

	require.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "receivai test", cnf.ProjectName)
	assert.Equal(t, "6001", cnf.Server.Port)
	assert.True(t, cnf.Ledger.DemoMode)
}

func TestDefaultsApplied(t *testing.T) {
	path := writeConfigFile(t, `{"ledger": {"demo_mode": true}}`)

	require.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "ReceivAI Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, "http://localhost:"+DEFAULT_PORT, cnf.Server.BaseURL)
	assert.Equal(t, "receivai.db", cnf.DataSource.Dns)
	assert.Equal(t, 1, cnf.Ledger.PollIntervalSec)
	assert.Equal(t, 30, cnf.Ledger.MaxPollAttempts)
	assert.EqualValues(t, 10000, cnf.Advisor.LowBalanceThreshold)
	assert.EqualValues(t, 20000, cnf.Advisor.UrgentBalanceThreshold)
	assert.Equal(t, 3, cnf.Advisor.PendingReminderDays)
	assert.Equal(t, 45, cnf.Advisor.EarlyDiscountMinDays)

	// Rate limiting stays off unless configured.
	assert.Nil(t, cnf.RateLimit.RequestsPerSecond)
	assert.Nil(t, cnf.RateLimit.Burst)
	assert.NotNil(t, cnf.RateLimit.CleanupIntervalSec)
}

func TestLiveModeRequiresRPCDetails(t *testing.T) {
	path := writeConfigFile(t, `{"ledger": {"demo_mode": false}}`)
	assert.Error(t, InitConfig(path))

	path = writeConfigFile(t, `{"ledger": {"demo_mode": false, "rpc_url": "https://rpc.example.com"}}`)
	assert.Error(t, InitConfig(path))

	path = writeConfigFile(t, `{"ledger": {"demo_mode": false, "rpc_url": "https://rpc.example.com", "contract_id": "CCONTRACT"}}`)
	assert.NoError(t, InitConfig(path))
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("RECEIVAI_SERVER_PORT", "7002")
	path := writeConfigFile(t, `{
		"server": {"port": "6001"},
		"ledger": {"demo_mode": true}
	}`)

	require.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "7002", cnf.Server.Port)
}

func TestRateLimitPartialConfigFillsCounterpart(t *testing.T) {
	path := writeConfigFile(t, `{
		"ledger": {"demo_mode": true},
		"rate_limit": {"requests_per_second": 10}
	}`)

	require.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	require.NoError(t, err)
	require.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)
}
