package pay

import (
	"bytes"
	"strings"
	"testing"

	"fastbreakfast/models"
	"fastbreakfast/stripe"
)

func TestBuildLineItems(t *testing.T) {
	cart := []models.CartItem{
		{Name: "Masala Dosa", Price: 120.50, Quantity: 2},
		{Name: "Chai", Price: 20, Quantity: 3},  // below the 50 floor
		{Name: "Idli Plate", Price: 80, Quantity: 0}, // quantity defaults to 1
	}

	items, total := BuildLineItems(cart)
	if len(items) != 3 {
		t.Fatalf("got %d line items, want 3", len(items))
	}

	if items[0].UnitAmount != 12050 {
		t.Errorf("dosa unit amount = %d, want 12050", items[0].UnitAmount)
	}
	if items[1].UnitAmount != 5000 {
		t.Errorf("floored unit amount = %d, want 5000", items[1].UnitAmount)
	}
	if items[2].Quantity != 1 {
		t.Errorf("zero quantity not normalized, got %d", items[2].Quantity)
	}

	want := int64(12050*2 + 5000*3 + 8000)
	if total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
}

func TestCartSummary(t *testing.T) {
	cart := []models.CartItem{
		{Name: "Masala Dosa", Quantity: 2},
		{Name: "Chai", Quantity: 0},
	}
	if got := CartSummary(cart); got != "Masala Dosa×2, Chai×1" {
		t.Errorf("summary = %q", got)
	}
}

func TestCartSummaryTruncates(t *testing.T) {
	long := []models.CartItem{{Name: strings.Repeat("x", 600), Quantity: 1}}
	got := CartSummary(long)
	if n := len([]rune(got)); n != summaryMaxChars {
		t.Errorf("summary length = %d, want %d", n, summaryMaxChars)
	}
}

func TestReconstructCart(t *testing.T) {
	items := ReconstructCart("Masala Dosa×2, Chai×1")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Masala Dosa" || items[0].Quantity != 2 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[1].Name != "Chai" || items[1].Quantity != 1 {
		t.Errorf("second item = %+v", items[1])
	}
	// the summary never carried prices
	if items[0].Price != 0 {
		t.Errorf("price reconstructed as %v, want 0", items[0].Price)
	}

	if got := ReconstructCart(""); got != nil {
		t.Errorf("empty summary produced %+v", got)
	}

	// entries without a quantity marker default to one
	items = ReconstructCart("Plain Toast")
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Errorf("markerless entry = %+v", items)
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	cart := []models.CartItem{
		{Name: "Masala Dosa", Price: 120.50, Quantity: 2},
		{Name: "Filter Coffee", Price: 60, Quantity: 1},
	}
	back := ReconstructCart(CartSummary(cart))
	if len(back) != len(cart) {
		t.Fatalf("round trip lost items: %d != %d", len(back), len(cart))
	}
	for i := range back {
		if back[i].Name != cart[i].Name || back[i].Quantity != cart[i].Quantity {
			t.Errorf("item %d = %+v, want name/qty of %+v", i, back[i], cart[i])
		}
	}
}

func TestBuildReceiptPDF(t *testing.T) {
	details := stripe.SessionDetails{
		ID:            "cs_test_123",
		PaymentStatus: "paid",
		AmountTotal:   30100,
		Currency:      "inr",
	}
	items := []models.CartItem{
		{Name: "Masala Dosa", Quantity: 2},
		{Name: "Filter Coffee", Quantity: 1},
	}

	pdf, err := BuildReceiptPDF(details, items)
	if err != nil {
		t.Fatalf("BuildReceiptPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if len(pdf) < 500 {
		t.Errorf("suspiciously small receipt: %d bytes", len(pdf))
	}
}
