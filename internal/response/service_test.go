package response

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rfpdesk.io/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newDraft(t *testing.T, svc *Service) *Response {
	t.Helper()
	r, err := svc.Create(context.Background(), CreateInput{
		RFPDocumentID:  "doc-1",
		Title:          "Acme Cloud Migration",
		Content:        "Our proposal...",
		Currency:       "USD",
		DeliveryModel:  "hybrid",
		DurationMonths: 6,
		Consultants:    3,
		RatePerMonth:   dec("5000.00"),
		TaxRate:        dec("15"),
		AdditionalCosts: []pricing.AdditionalCost{
			{Label: "travel", Amount: dec("1200.00")},
		},
		PaymentTerms:         "30 days net",
		ProposalValidityDays: 60,
	})
	require.NoError(t, err)
	return r
}

func TestLifecycleHappyPath(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()
	r := newDraft(t, svc)
	require.Equal(t, StatusDraft, r.Status)
	require.False(t, r.Priced())

	r, err := svc.Price(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPriced, r.Status)
	require.True(t, r.Priced())
	require.Equal(t, "91200.00", r.TotalProjectCost.Decimal.StringFixed(2))
	require.Equal(t, "13680.00", r.TaxAmount.Decimal.StringFixed(2))
	require.Equal(t, "104880.00", r.FinalTotalCost.Decimal.StringFixed(2))

	r, err = svc.Finalize(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFinalized, r.Status)

	r, err = svc.Send(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, r.Status)
}

func TestPriceRequiresValidInputs(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()
	r, err := svc.Create(ctx, CreateInput{
		RFPDocumentID: "doc-1",
		Title:         "Incomplete",
		Currency:      "USD",
		// no duration, no consultants
	})
	require.NoError(t, err)

	_, err = svc.Price(ctx, r.ID)
	require.True(t, errors.Is(err, pricing.ErrValidation), "got %v", err)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, got.Status, "failed pricing must not change state")
	require.False(t, got.Priced())
}

func TestFinalizeGates(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()

	// Straight from draft: not allowed.
	r := newDraft(t, svc)
	_, err := svc.Finalize(ctx, r.ID)
	require.True(t, errors.Is(err, ErrInvalidState))

	// Priced but empty content.
	r = newDraft(t, svc)
	empty := ""
	_, err = svc.Update(ctx, r.ID, UpdateInput{Content: &empty})
	require.NoError(t, err)
	_, err = svc.Price(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, r.ID)
	require.True(t, errors.Is(err, ErrInvalidState))

	// Priced but empty payment terms.
	r = newDraft(t, svc)
	_, err = svc.Update(ctx, r.ID, UpdateInput{PaymentTerms: &empty})
	require.NoError(t, err)
	_, err = svc.Price(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, r.ID)
	require.True(t, errors.Is(err, ErrInvalidState))
}

func TestSentIsTerminal(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()
	r := newDraft(t, svc)

	_, err := svc.Price(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Send(ctx, r.ID)
	require.NoError(t, err)

	title := "new title"
	_, err = svc.Update(ctx, r.ID, UpdateInput{Title: &title})
	require.True(t, errors.Is(err, ErrImmutable), "update: got %v", err)
	_, err = svc.Price(ctx, r.ID)
	require.True(t, errors.Is(err, ErrImmutable), "price: got %v", err)
	_, err = svc.Finalize(ctx, r.ID)
	require.True(t, errors.Is(err, ErrImmutable), "finalize: got %v", err)
	_, err = svc.Send(ctx, r.ID)
	require.True(t, errors.Is(err, ErrImmutable), "send: got %v", err)
	_, err = svc.Reopen(ctx, r.ID)
	require.True(t, errors.Is(err, ErrImmutable), "reopen: got %v", err)
}

func TestReopenClearsDerivedFields(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()
	r := newDraft(t, svc)

	_, err := svc.Price(ctx, r.ID)
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, r.ID)
	require.NoError(t, err)

	r, err = svc.Reopen(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, r.Status)
	require.False(t, r.Priced())

	// Pricing must be recomputed before finalizing again.
	_, err = svc.Finalize(ctx, r.ID)
	require.True(t, errors.Is(err, ErrInvalidState))
}

func TestPricingEditDemotesPricedResponse(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()
	r := newDraft(t, svc)

	_, err := svc.Price(ctx, r.ID)
	require.NoError(t, err)

	consultants := 5
	r, err = svc.Update(ctx, r.ID, UpdateInput{Consultants: &consultants})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, r.Status)
	require.False(t, r.Priced())
}

func TestConcurrentFinalizeExactlyOneWins(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()
	r := newDraft(t, svc)
	_, err := svc.Price(ctx, r.ID)
	require.NoError(t, err)

	const callers = 2
	errs := make([]error, callers)
	var (
		start sync.WaitGroup
		done  sync.WaitGroup
	)
	start.Add(1)
	for i := 0; i < callers; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			_, errs[i] = svc.Finalize(ctx, r.ID)
		}(i)
	}
	start.Done()
	done.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidState):
			// The loser either lost the conditional write or read the
			// already-finalized record.
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, conflicts)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFinalized, got.Status)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{RFPDocumentID: "doc-1", Title: "x", Currency: "GBP"})
	require.True(t, errors.Is(err, ErrValidation), "currency: got %v", err)

	_, err = svc.Create(ctx, CreateInput{RFPDocumentID: "doc-1", Title: "x", Currency: "USD", DeliveryModel: "remote"})
	require.True(t, errors.Is(err, ErrValidation), "delivery model: got %v", err)

	_, err = svc.Create(ctx, CreateInput{Title: "x", Currency: "USD"})
	require.True(t, errors.Is(err, ErrValidation), "missing document: got %v", err)
}

func TestUpdatedAtAdvances(t *testing.T) {
	current := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
	svc := NewService(NewInMemory(), WithClock(clock))
	ctx := context.Background()
	r := newDraft(t, svc)
	before := r.UpdatedAt

	r, err := svc.Price(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, r.UpdatedAt.After(before))
}
