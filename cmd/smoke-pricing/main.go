package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk.io/internal/document"
	"rfpdesk.io/internal/pricing"
	"rfpdesk.io/internal/response"
)

// Exercises the pricing engine and the response lifecycle end to end
// against in-memory stores.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	docs := document.NewService(document.NewInMemory())
	responses := response.NewService(response.NewInMemory())

	doc, err := docs.CreateRFPDocument(ctx, document.CreateRFPInput{
		Title:      "Smoke RFP",
		ClientName: "Smoke Client",
		FileName:   "smoke.pdf",
		FileSize:   1024,
		FileType:   "pdf",
	})
	if err != nil {
		log.Fatalf("create document: %v", err)
	}

	r, err := responses.Create(ctx, response.CreateInput{
		RFPDocumentID:  doc.ID,
		Title:          "Smoke proposal",
		Content:        "body",
		Currency:       "USD",
		DurationMonths: 6,
		Consultants:    3,
		RatePerMonth:   decimal.NewFromInt(5000),
		TaxRate:        decimal.NewFromInt(15),
		AdditionalCosts: []pricing.AdditionalCost{
			{Label: "travel", Amount: decimal.NewFromInt(1200)},
		},
		PaymentTerms: "net 30",
	})
	if err != nil {
		log.Fatalf("create response: %v", err)
	}

	if r, err = responses.Price(ctx, r.ID); err != nil {
		log.Fatalf("price: %v", err)
	}

	want := decimal.RequireFromString("104880")
	if !r.FinalTotalCost.Decimal.Equal(want) {
		log.Fatalf("final total = %s, want %s", r.FinalTotalCost.Decimal, want)
	}
	sum := r.TotalProjectCost.Decimal.Add(r.TaxAmount.Decimal)
	if !sum.Equal(r.FinalTotalCost.Decimal) {
		log.Fatalf("totals do not add up: %s + %s != %s",
			r.TotalProjectCost.Decimal, r.TaxAmount.Decimal, r.FinalTotalCost.Decimal)
	}

	if r, err = responses.Finalize(ctx, r.ID); err != nil {
		log.Fatalf("finalize: %v", err)
	}
	if r, err = responses.Send(ctx, r.ID); err != nil {
		log.Fatalf("send: %v", err)
	}
	if _, err = responses.Reopen(ctx, r.ID); err == nil {
		log.Fatal("reopen of a sent response must fail")
	}

	fmt.Printf("✅ pricing smoke test passed: response=%s final=%s\n", r.ID, r.FinalTotalCost.Decimal)
}
