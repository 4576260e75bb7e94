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

package receivai

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/receivai/receivai/config"
	"github.com/receivai/receivai/ledger"
)

// fakeClock is a controllable clock shared by the store and the demo ledger
// in tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestStore builds a demo-mode store over an in-memory datasource with a
// controllable clock.
func newTestStore(t *testing.T, clock *fakeClock) (*Receivai, *MockDataSource) {
	t.Helper()

	config.MockConfig(&config.Configuration{
		Ledger: config.LedgerConfig{DemoMode: true},
	})
	cnf, err := config.Fetch()
	require.NoError(t, err)

	db := NewMockDataSource()
	local := ledger.NewLocalClient(db)
	local.Now = clock.Now

	return &Receivai{
		datasource: db,
		ledger:     local,
		config:     cnf,
		dismissed:  make(map[string]struct{}),
		now:        clock.Now,
	}, db
}
