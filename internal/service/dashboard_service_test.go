package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portkey-logistics/portkey/internal/config"
	"github.com/portkey-logistics/portkey/internal/domain"
)

type lookupCounter struct{ hits, misses int }

func (l *lookupCounter) RecordCacheLookup(hit bool) {
	if hit {
		l.hits++
		return
	}
	l.misses++
}

func TestDashboardMetricsCachedPerScope(t *testing.T) {
	shipments, repo, dispatcher := newShipmentFixture()
	cache := newMemCache()
	counter := &lookupCounter{}
	dashboard := NewDashboardService(repo, cache, time.Minute, counter, nil)
	NewNotificationService(dispatcher, dashboard, nil, config.NotificationConfig{}).RegisterHandlers()
	ctx := context.Background()

	_, err := shipments.Create(ctx, alice, ShipmentCreateInput{BLNumber: "A1", ServiceFee: 100})
	require.NoError(t, err)
	_, err = shipments.Create(ctx, bob, ShipmentCreateInput{BLNumber: "B1", ServiceFee: 50})
	require.NoError(t, err)

	m, err := dashboard.Metrics(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.TotalShipments)
	assert.Equal(t, 100.0, m.Revenue)

	m, err = dashboard.Metrics(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ByStatus[domain.ShipmentStatusPending])
	assert.Equal(t, 1, repo.metrics, "second read served from cache")
	assert.Equal(t, 1, counter.hits)

	all, err := dashboard.Metrics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalShipments)
	assert.Equal(t, 150.0, all.Revenue)
	assert.Equal(t, 2, repo.metrics)

	assert.True(t, cache.has(metricsKey(strPtr("alice"))))
	assert.True(t, cache.has(metricsKey(nil)))

	// A write by alice drops her scope and the global one.
	_, err = shipments.Create(ctx, alice, ShipmentCreateInput{BLNumber: "A2", ServiceFee: 1})
	require.NoError(t, err)
	assert.False(t, cache.has(metricsKey(strPtr("alice"))))
	assert.False(t, cache.has(metricsKey(nil)))

	m, err = dashboard.Metrics(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.TotalShipments)
}

func TestDashboardFallsBackWhenCacheFails(t *testing.T) {
	_, repo, _ := newShipmentFixture()
	cache := newMemCache()
	cache.failGet = true
	dashboard := NewDashboardService(repo, cache, time.Minute, nil, nil)

	m, err := dashboard.Metrics(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.TotalShipments)
	assert.Len(t, m.ByStatus, len(domain.ShipmentStatuses))
}

func TestDashboardWithUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	_, repo, _ := newShipmentFixture()
	dashboard := NewDashboardService(repo, NewRedisMetricsCache(client), time.Minute, nil, nil)

	m, err := dashboard.Metrics(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.TotalShipments)
	assert.Error(t, dashboard.Invalidate(context.Background(), "alice"))
}

func TestDashboardCacheDisabled(t *testing.T) {
	_, repo, _ := newShipmentFixture()
	dashboard := NewDashboardService(repo, nil, 0, nil, nil)

	_, err := dashboard.Metrics(context.Background(), alice)
	require.NoError(t, err)
	_, err = dashboard.Metrics(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.metrics)
	assert.NoError(t, dashboard.Invalidate(context.Background(), "alice"))
}

func TestDashboardStatus(t *testing.T) {
	dashboard := NewDashboardService(nil, nil, 0, nil, nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dashboard.now = func() time.Time { return fixed }

	status := dashboard.Status()
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, fixed, status.Timestamp)
}

func TestDashboardAdminKPIs(t *testing.T) {
	shipments, repo, _ := newShipmentFixture()
	dashboard := NewDashboardService(repo, newMemCache(), time.Minute, nil, nil)
	ctx := context.Background()

	inputs := []ShipmentCreateInput{
		{BLNumber: "K1", ClientName: strPtr("Acme"), ServiceFee: 100},
		{BLNumber: "K2", ClientName: strPtr(" Acme "), ServiceFee: 50},
		{BLNumber: "K3", ClientName: strPtr("Globex"), ServiceFee: 25},
		{BLNumber: "K4", ServiceFee: 10},
	}
	var ids []string
	for _, in := range inputs {
		s, err := shipments.Create(ctx, alice, in)
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	_, err := shipments.Update(ctx, admin, ids[2], ShipmentUpdateInput{Status: statusPtr(domain.ShipmentStatusInTransit)})
	require.NoError(t, err)
	_, err = shipments.Update(ctx, admin, ids[3], ShipmentUpdateInput{Status: statusPtr(domain.ShipmentStatusDelivered)})
	require.NoError(t, err)

	m, err := dashboard.Metrics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Active, "two pending plus one in transit")
	assert.Equal(t, int64(3), m.Delayed, "fixture rows are dated 2024; the delivered one is excluded")
	assert.Equal(t, int64(2), m.UniqueClients)
	require.Len(t, m.RevenueByDay, 1)
	assert.Equal(t, "2024-01-01", m.RevenueByDay[0].Date)
	assert.Equal(t, 185.0, m.RevenueByDay[0].Revenue)

	cached, err := dashboard.Metrics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, m, cached, "KPIs survive the cache round trip")
}
