package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
	"github.com/ledgerlink/ledgerlink/internal/docstore/memstore"
	"github.com/ledgerlink/ledgerlink/internal/documents"
)

func TestServiceAggregatesLiveChanges(t *testing.T) {
	store := memstore.New(nil)
	svc := NewService(store, nil, nil, Options{})
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx))
	defer svc.Close()

	_, err := store.Create(ctx, documents.CollectionOrders, docstore.Fields{
		"pricing": map[string]any{"total": float64(1000)},
		"status":  "DELIVERED",
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, documents.CollectionInvoices, docstore.Fields{
		"total":   float64(500),
		"payment": map[string]any{"status": "DUE"},
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, documents.CollectionPurchaseOrders, docstore.Fields{
		"status": "DRAFT",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s := svc.Summary()
		return s.Orders30 == 1 && s.Delivered30 == 1 &&
			s.GrossSales30 == 1000.0 &&
			s.OutstandingInvoices == 1 && s.OutstandingAmount == 500.0 &&
			s.OpenPurchaseOrders == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestServiceReactsToStatusFlips(t *testing.T) {
	store := memstore.New(nil)
	svc := NewService(store, nil, nil, Options{})
	ctx := context.Background()

	poID, err := store.Create(ctx, documents.CollectionPurchaseOrders, docstore.Fields{"status": "DRAFT"})
	require.NoError(t, err)

	require.NoError(t, svc.Start(ctx))
	defer svc.Close()

	require.Eventually(t, func() bool {
		return svc.Summary().OpenPurchaseOrders == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, store.Update(ctx, documents.CollectionPurchaseOrders, poID, docstore.Fields{"status": "CONVERTED"}))

	require.Eventually(t, func() bool {
		return svc.Summary().OpenPurchaseOrders == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestServiceUnionsLegacyInvoices(t *testing.T) {
	store := memstore.New(nil)
	svc := NewService(store, nil, nil, Options{})
	ctx := context.Background()

	_, err := store.Create(ctx, documents.CollectionInvoices, docstore.Fields{"total": float64(200)})
	require.NoError(t, err)
	_, err = store.Create(ctx, documents.CollectionLegacyInvoices, docstore.Fields{
		"pricing": map[string]any{"total": float64(300)},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Start(ctx))
	defer svc.Close()

	require.Eventually(t, func() bool {
		s := svc.Summary()
		return s.OutstandingInvoices == 2 && s.OutstandingAmount == 500.0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestServiceCloseTearsDownSubscriptions(t *testing.T) {
	store := memstore.New(nil)
	svc := NewService(store, nil, nil, Options{})
	require.NoError(t, svc.Start(context.Background()))
	svc.Close()

	// A second Close must not panic or hang.
	svc.Close()
}

func TestServiceStartCancelledContext(t *testing.T) {
	store := memstore.New(nil)
	svc := NewService(store, nil, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, svc.Start(ctx))
}
