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

package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLocker_LockAndUnlock(t *testing.T) {
	client := newTestClient(t)
	locker := NewLockerForInvoice(client, "inv_123")

	err := locker.Lock(context.Background(), 5*time.Second)
	require.NoError(t, err)

	err = locker.Unlock(context.Background())
	assert.NoError(t, err)
}

func TestLocker_Lock_AlreadyHeld(t *testing.T) {
	client := newTestClient(t)
	first := NewLockerForInvoice(client, "inv_123")
	second := NewLockerForInvoice(client, "inv_123")

	require.NoError(t, first.Lock(context.Background(), 5*time.Second))

	err := second.Lock(context.Background(), 5*time.Second)
	assert.ErrorContains(t, err, "already held")
}

func TestLocker_DifferentInvoicesDoNotContend(t *testing.T) {
	client := newTestClient(t)
	first := NewLockerForInvoice(client, "inv_123")
	second := NewLockerForInvoice(client, "inv_456")

	require.NoError(t, first.Lock(context.Background(), 5*time.Second))
	assert.NoError(t, second.Lock(context.Background(), 5*time.Second))
}

func TestLocker_Unlock_NotHolder(t *testing.T) {
	client := newTestClient(t)
	holder := NewLockerForInvoice(client, "inv_123")
	impostor := NewLockerForInvoice(client, "inv_123")

	require.NoError(t, holder.Lock(context.Background(), 5*time.Second))

	err := impostor.Unlock(context.Background())
	assert.ErrorContains(t, err, "unlock failed")
}

func TestLocker_ExtendLock(t *testing.T) {
	client := newTestClient(t)
	locker := NewLockerForInvoice(client, "inv_123")

	require.NoError(t, locker.Lock(context.Background(), time.Second))
	assert.NoError(t, locker.ExtendLock(context.Background(), 5*time.Second))
}

func TestLocker_WaitLock_AcquiresAfterRelease(t *testing.T) {
	client := newTestClient(t)
	first := NewLockerForInvoice(client, "inv_123")
	second := NewLockerForInvoice(client, "inv_123")

	require.NoError(t, first.Lock(context.Background(), 5*time.Second))

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = first.Unlock(context.Background())
	}()

	err := second.WaitLock(context.Background(), 5*time.Second, 2*time.Second)
	assert.NoError(t, err)
}

func TestLocker_WaitLock_Timeout(t *testing.T) {
	client := newTestClient(t)
	first := NewLockerForInvoice(client, "inv_123")
	second := NewLockerForInvoice(client, "inv_123")

	require.NoError(t, first.Lock(context.Background(), 30*time.Second))

	err := second.WaitLock(context.Background(), 5*time.Second, 300*time.Millisecond)
	assert.ErrorContains(t, err, "within the wait timeout")
}
