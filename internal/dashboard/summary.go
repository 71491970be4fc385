// Package dashboard maintains the continuously updated read model over the
// live document collections. Five independent subscriptions feed one
// aggregator goroutine; every incoming snapshot triggers a full recompute of
// the rolling-window KPIs.
package dashboard

import (
	"time"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
	"github.com/ledgerlink/ledgerlink/internal/documents"
)

// Window is the default rolling KPI window.
const Window = 30 * 24 * time.Hour

// displayLimit bounds the pending-link and recent-sale lists.
const displayLimit = 6

// OrderRef is a display row for an order awaiting a purchase link.
type OrderRef struct {
	ID        string  `json:"id"`
	Customer  string  `json:"customer"`
	Total     float64 `json:"total"`
	CreatedAt int64   `json:"createdAt"`
}

// CustomSaleRef is a display row for a recently logged custom sale.
type CustomSaleRef struct {
	ID      string  `json:"id"`
	Amount  float64 `json:"amount"`
	Channel string  `json:"channel"`
	Date    int64   `json:"date"`
}

// Summary is the derived dashboard view. It is a read model, not a source of
// truth: missing data reads as zero and rendering never blocks on it.
type Summary struct {
	Orders30            int     `json:"orders30"`
	Delivered30         int     `json:"delivered30"`
	GrossSales30        float64 `json:"grossSales30"`
	OutstandingInvoices int     `json:"outstandingInvoices"`
	OutstandingAmount   float64 `json:"outstandingAmount"`
	LinkedOrders        int     `json:"linkedOrders"`
	OpenPurchaseOrders  int     `json:"openPurchaseOrders"`
	CustomSales30       int     `json:"customSales30"`
	CustomSalesAmount30 float64 `json:"customSalesAmount30"`

	PendingPurchaseLinks []OrderRef      `json:"pendingPurchaseLinks"`
	RecentCustomSales    []CustomSaleRef `json:"recentCustomSales"`

	ComputedAt int64 `json:"computedAt"`
}

// collectionState is the aggregator's raw input: the latest snapshot of each
// subscribed collection, already ordered most-recent-first by the store.
type collectionState struct {
	orders         []docstore.Document
	invoices       []docstore.Document
	legacyInvoices []docstore.Document
	customSales    []docstore.Document
	purchaseOrders []docstore.Document
}

// buildSummary recomputes the whole view from the current state. Pure: the
// only inputs are the snapshots, the clock reading and the window.
func buildSummary(state collectionState, now time.Time, window time.Duration) Summary {
	cutoff := now.Add(-window).UnixMilli()
	summary := Summary{ComputedAt: now.UnixMilli()}

	for _, doc := range state.orders {
		order := documents.DecodeSalesOrder(doc.ID, doc.Fields)
		if order.LinkedPurchaseOrder != "" {
			summary.LinkedOrders++
		} else if len(summary.PendingPurchaseLinks) < displayLimit {
			summary.PendingPurchaseLinks = append(summary.PendingPurchaseLinks, OrderRef{
				ID:        order.ID,
				Customer:  order.Customer,
				Total:     order.PricingTotal,
				CreatedAt: order.CreatedAt,
			})
		}
		if order.CreatedAt < cutoff {
			continue
		}
		summary.Orders30++
		summary.GrossSales30 += order.PricingTotal
		if order.Status == documents.OrderStatusDelivered {
			summary.Delivered30++
		}
	}

	countInvoices := func(docs []docstore.Document, legacy bool) {
		for _, doc := range docs {
			inv := documents.DecodeInvoice(doc.ID, doc.Fields, legacy)
			resolved := documents.ResolveInvoiceStatus(inv)
			if resolved == documents.InvoiceStatusPaid {
				continue
			}
			// paid stays zero for every invoice that reaches this point;
			// the subtraction only matters once partial payments exist.
			paid := 0.0
			if resolved == documents.InvoiceStatusPaid {
				paid = inv.Total
			}
			outstanding := inv.Total - paid
			if outstanding < 0 {
				outstanding = 0
			}
			summary.OutstandingInvoices++
			summary.OutstandingAmount += outstanding
		}
	}
	countInvoices(state.invoices, false)
	countInvoices(state.legacyInvoices, true)

	for _, doc := range state.customSales {
		sale := documents.DecodeCustomSale(doc.ID, doc.Fields)
		if len(summary.RecentCustomSales) < displayLimit {
			summary.RecentCustomSales = append(summary.RecentCustomSales, CustomSaleRef{
				ID:      sale.ID,
				Amount:  sale.Amount,
				Channel: sale.Channel,
				Date:    sale.Date,
			})
		}
		if sale.Date < cutoff {
			continue
		}
		summary.CustomSales30++
		summary.CustomSalesAmount30 += sale.Amount
	}

	for _, doc := range state.purchaseOrders {
		po := documents.DecodePurchaseOrder(doc.ID, doc.Fields)
		if po.Status != documents.POStatusConverted {
			summary.OpenPurchaseOrders++
		}
	}

	return summary
}
