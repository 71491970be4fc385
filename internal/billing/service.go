// Package billing owns the write side of the financial document lifecycle:
// purchase order and bill creation, the purchase-order-to-bill conversion
// workflow, bill settlement and order linkage.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerlink/ledgerlink/internal/docstore"
	"github.com/ledgerlink/ledgerlink/internal/documents"
)

var (
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("billing: invalid input")
	// ErrInvalidState occurs when an operation violates the one-way status flow.
	ErrInvalidState = errors.New("billing: invalid state transition")
)

// PartialConversionError reports a conversion that created the bill but
// failed to flip the source purchase order to CONVERTED. The bill is valid;
// the linkage is repaired by retrying the status update (see the
// reconciliation sweep).
type PartialConversionError struct {
	BillID string
	POID   string
	Err    error
}

func (e *PartialConversionError) Error() string {
	return fmt.Sprintf("billing: bill %s created but purchase order %s not marked converted: %v", e.BillID, e.POID, e.Err)
}

func (e *PartialConversionError) Unwrap() error { return e.Err }

// Service orchestrates document writes against the store.
type Service struct {
	store    docstore.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the billing service.
func NewService(store docstore.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, validate: validator.New(), logger: logger}
}

// LineItemInput is one editable line of a purchase order or bill.
type LineItemInput struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty" validate:"gte=0"`
	Rate float64 `json:"rate" validate:"gte=0"`
}

// CreatePurchaseOrderInput describes a new purchase order.
type CreatePurchaseOrderInput struct {
	VendorID string          `json:"vendorId" validate:"required"`
	RefNo    string          `json:"refNo"`
	Date     string          `json:"date"`
	Lines    []LineItemInput `json:"lines" validate:"dive"`
	TaxPct   float64         `json:"taxPct" validate:"gte=0"`
	Notes    string          `json:"notes"`
}

// CreateBillInput describes a bill created directly rather than by
// conversion.
type CreateBillInput struct {
	VendorID string          `json:"vendorId" validate:"required"`
	BillNo   string          `json:"billNo"`
	Date     string          `json:"date"`
	Lines    []LineItemInput `json:"lines" validate:"dive"`
	TaxPct   float64         `json:"taxPct" validate:"gte=0"`
	Notes    string          `json:"notes"`
}

func toLineItems(lines []LineItemInput) []documents.LineItem {
	out := make([]documents.LineItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, documents.LineItem{Name: line.Name, Qty: line.Qty, Rate: line.Rate})
	}
	return out
}

// CreatePurchaseOrder persists a DRAFT purchase order with recomputed totals.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (string, error) {
	if err := s.validate.Struct(input); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	lines := toLineItems(input.Lines)
	totals := documents.ComputeTotals(lines, input.TaxPct)
	id, err := s.store.Create(ctx, documents.CollectionPurchaseOrders, docstore.Fields{
		"vendorId": input.VendorID,
		"refNo":    input.RefNo,
		"date":     input.Date,
		"lines":    documents.EncodeLines(lines),
		"taxPct":   input.TaxPct,
		"totals":   documents.EncodeTotals(totals),
		"notes":    input.Notes,
		"status":   string(documents.POStatusDraft),
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("purchase order created", slog.String("id", id), slog.Float64("total", totals.Total))
	return id, nil
}

// CreateBill persists a DRAFT bill with recomputed totals and an open amount
// equal to the total.
func (s *Service) CreateBill(ctx context.Context, input CreateBillInput) (string, error) {
	if err := s.validate.Struct(input); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	lines := toLineItems(input.Lines)
	totals := documents.ComputeTotals(lines, input.TaxPct)
	id, err := s.store.Create(ctx, documents.CollectionBills, docstore.Fields{
		"vendorId":   input.VendorID,
		"billNo":     input.BillNo,
		"date":       input.Date,
		"lines":      documents.EncodeLines(lines),
		"taxPct":     input.TaxPct,
		"totals":     documents.EncodeTotals(totals),
		"notes":      input.Notes,
		"status":     string(documents.BillStatusDraft),
		"openAmount": totals.Total,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("bill created", slog.String("id", id), slog.Float64("total", totals.Total))
	return id, nil
}

// ConvertToBill turns a purchase order into a draft bill and flips the order
// to CONVERTED. Totals are recomputed from the order's lines rather than
// copied, so a stale stored totals field cannot leak into the bill.
//
// The two writes are independent and not transactional. When the bill lands
// but the status flip fails, the result is a valid bill pointing at a
// still-DRAFT purchase order; the error carries the bill id and the sweep
// repairs the linkage later. Callers prevent double conversion at the UI
// layer; a second call simply produces a second bill.
func (s *Service) ConvertToBill(ctx context.Context, poID string) (string, error) {
	doc, err := s.store.Get(ctx, documents.CollectionPurchaseOrders, poID)
	if err != nil {
		return "", err
	}
	po := documents.DecodePurchaseOrder(doc.ID, doc.Fields)
	totals := documents.ComputeTotals(po.Lines, po.TaxPct)

	billID, err := s.store.Create(ctx, documents.CollectionBills, docstore.Fields{
		"fromPO":     po.ID,
		"vendorId":   po.VendorID,
		"billNo":     "",
		"date":       po.Date,
		"lines":      documents.EncodeLines(po.Lines),
		"taxPct":     po.TaxPct,
		"totals":     documents.EncodeTotals(totals),
		"notes":      po.Notes,
		"status":     string(documents.BillStatusDraft),
		"openAmount": totals.Total,
	})
	if err != nil {
		return "", err
	}

	if err := s.store.Update(ctx, documents.CollectionPurchaseOrders, po.ID, docstore.Fields{
		"status": string(documents.POStatusConverted),
	}); err != nil {
		s.logger.Error("conversion left purchase order unconverted",
			slog.String("po", po.ID), slog.String("bill", billID), slog.Any("error", err))
		return billID, &PartialConversionError{BillID: billID, POID: po.ID, Err: err}
	}
	s.logger.Info("purchase order converted",
		slog.String("po", po.ID), slog.String("bill", billID), slog.Float64("total", totals.Total))
	return billID, nil
}

// MarkBillPaid settles a bill: PAID status, open amount zeroed. The
// transition is one-way; paying a paid bill is an invalid state.
func (s *Service) MarkBillPaid(ctx context.Context, billID string) error {
	doc, err := s.store.Get(ctx, documents.CollectionBills, billID)
	if err != nil {
		return err
	}
	bill := documents.DecodeBill(doc.ID, doc.Fields)
	if bill.Status == documents.BillStatusPaid {
		return ErrInvalidState
	}
	if err := s.store.Update(ctx, documents.CollectionBills, billID, docstore.Fields{
		"status":     string(documents.BillStatusPaid),
		"openAmount": 0.0,
	}); err != nil {
		return err
	}
	s.logger.Info("bill paid", slog.String("id", billID))
	return nil
}

// LinkOrderToPurchase attaches a purchase order reference to a sales order.
// The reference is stored as an object with an id field, the shape the
// dashboard and the storefront both read.
func (s *Service) LinkOrderToPurchase(ctx context.Context, orderID, poID string) error {
	if _, err := s.store.Get(ctx, documents.CollectionPurchaseOrders, poID); err != nil {
		return err
	}
	if err := s.store.Update(ctx, documents.CollectionOrders, orderID, docstore.Fields{
		"linkedPurchaseOrder": map[string]any{"id": poID},
	}); err != nil {
		return err
	}
	s.logger.Info("order linked to purchase order", slog.String("order", orderID), slog.String("po", poID))
	return nil
}

// SweepOrphanedBills finds bills whose fromPO points at a purchase order that
// is not CONVERTED and retries the status flip. Returns the repair count.
func (s *Service) SweepOrphanedBills(ctx context.Context) (int, error) {
	bills, err := s.store.List(ctx, documents.CollectionBills, docstore.ListOptions{Limit: docstore.MaxSubscribeLimit})
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, doc := range bills {
		bill := documents.DecodeBill(doc.ID, doc.Fields)
		if bill.FromPO == "" {
			continue
		}
		poDoc, err := s.store.Get(ctx, documents.CollectionPurchaseOrders, bill.FromPO)
		if err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				s.logger.Warn("bill references missing purchase order",
					slog.String("bill", bill.ID), slog.String("po", bill.FromPO))
				continue
			}
			return repaired, err
		}
		po := documents.DecodePurchaseOrder(poDoc.ID, poDoc.Fields)
		if po.Status == documents.POStatusConverted {
			continue
		}
		if err := s.store.Update(ctx, documents.CollectionPurchaseOrders, po.ID, docstore.Fields{
			"status": string(documents.POStatusConverted),
		}); err != nil {
			return repaired, err
		}
		repaired++
		s.logger.Info("repaired orphaned conversion",
			slog.String("po", po.ID), slog.String("bill", bill.ID))
	}
	return repaired, nil
}
