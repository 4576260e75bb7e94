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

// Package receivai is the invoice financing store. It drives invoices
// through their lifecycle (pending, verified, listed, sold, settled) against
// a ledger client, persists per-identity snapshots, and generates advisory
// recommendations over the portfolio.
package receivai

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/receivai/receivai/config"
	"github.com/receivai/receivai/database"
	redlock "github.com/receivai/receivai/internal/lock"
	redis_db "github.com/receivai/receivai/internal/redis-db"
	"github.com/receivai/receivai/ledger"
)

var tracer = otel.Tracer("receivai.store")

const (
	lockDuration    = 30 * time.Second
	lockWaitTimeout = 10 * time.Second
)

// Receivai represents the main struct for the ReceivAI application.
type Receivai struct {
	datasource database.IDataSource
	ledger     ledger.Client
	redis      redis.UniversalClient
	config     *config.Configuration

	// dismissed recommendation ids, transient by design: a dismissal lasts
	// for the process lifetime only.
	dismissMu sync.Mutex
	dismissed map[string]struct{}

	now func() time.Time
}

// NewReceivai initializes a new instance of Receivai with the provided
// datasource. The ledger strategy is chosen here, once: demo mode gets the
// local snapshot-backed client, live mode gets the remote contract client
// plus a redis connection for per-invoice submission locks.
func NewReceivai(db database.IDataSource) (*Receivai, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var client ledger.Client
	var redisClient redis.UniversalClient
	if configuration.Ledger.DemoMode {
		client = ledger.NewLocalClient(db)
	} else {
		client = ledger.NewRemoteClient(
			configuration.Ledger.RpcURL,
			configuration.Ledger.ContractID,
			configuration.Ledger.PollInterval(),
			configuration.Ledger.MaxPollAttempts,
		)
		if configuration.Redis.Dns != "" {
			rd, err := redis_db.NewRedisClient(configuration.Redis.Dns)
			if err != nil {
				return nil, err
			}
			redisClient = rd.Client()
		}
	}

	return &Receivai{
		datasource: db,
		ledger:     client,
		redis:      redisClient,
		config:     configuration,
		dismissed:  make(map[string]struct{}),
		now:        time.Now,
	}, nil
}

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, err)
	return err
}

// acquireLock takes the per-invoice submission lock when redis is
// configured. Demo mode runs without redis and relies on serialized
// execution; overlapping demo mutations are last-writer-wins.
func (r *Receivai) acquireLock(ctx context.Context, invoiceID string) (*redlock.Locker, error) {
	if r.redis == nil {
		return nil, nil
	}
	locker := redlock.NewLockerForInvoice(r.redis, invoiceID)
	if err := locker.WaitLock(ctx, lockDuration, lockWaitTimeout); err != nil {
		return nil, err
	}
	return locker, nil
}

func (r *Receivai) releaseLock(ctx context.Context, locker *redlock.Locker) {
	if locker == nil {
		return
	}
	if err := locker.Unlock(ctx); err != nil {
		logrus.Errorf("failed to release invoice lock: %v", err)
	}
}
