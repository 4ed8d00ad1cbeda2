package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SmartForms-ai/google-forms-api/internal/database"
	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

type fakeStripe struct {
	customerCalls int
	sessionCalls  int
	customerErr   error
	sessionErr    error
	lastCustomer  string
}

func (f *fakeStripe) CreateCustomer(email string) (string, error) {
	f.customerCalls++
	if f.customerErr != nil {
		return "", f.customerErr
	}
	return "cus_new", nil
}

func (f *fakeStripe) CreateCheckoutSession(customerID string) (string, error) {
	f.sessionCalls++
	f.lastCustomer = customerID
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return "cs_test_1", nil
}

func newCheckoutEnv(t *testing.T, stripe *fakeStripe) (*CheckoutHandler, *store.UsageStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	usage := store.NewUsageStore(db)
	h := NewCheckoutHandler(stripe, staticResolver("a@example.com"), usage, testLogger())
	return h, usage
}

func postCheckout(t *testing.T, h *CheckoutHandler, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/create-checkout-session", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.CreateCheckoutSession(rec, req)
	return rec
}

func TestCheckoutRequiresAuth(t *testing.T) {
	h, _ := newCheckoutEnv(t, &fakeStripe{})

	rec := postCheckout(t, h, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCheckoutCreatesCustomerAndSession(t *testing.T) {
	fake := &fakeStripe{}
	h, usage := newCheckoutEnv(t, fake)

	rec := postCheckout(t, h, "tok-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"sessionId":"cs_test_1"`) {
		t.Errorf("body = %q, want session id", rec.Body.String())
	}
	if fake.customerCalls != 1 {
		t.Errorf("customer calls = %d, want 1", fake.customerCalls)
	}
	if fake.lastCustomer != "cus_new" {
		t.Errorf("session customer = %q, want cus_new", fake.lastCustomer)
	}

	record, err := usage.GetByEmail("a@example.com")
	if err != nil || record == nil {
		t.Fatalf("usage record: %v, %v", record, err)
	}
	if record.StripeCustomerID == nil || *record.StripeCustomerID != "cus_new" {
		t.Errorf("stored customer id = %v, want cus_new", record.StripeCustomerID)
	}
}

func TestCheckoutReusesExistingCustomer(t *testing.T) {
	fake := &fakeStripe{}
	h, usage := newCheckoutEnv(t, fake)

	record, err := usage.GetOrCreate("a@example.com")
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if err := usage.SetStripeCustomerID(record.ID, "cus_existing"); err != nil {
		t.Fatalf("seed customer id: %v", err)
	}

	rec := postCheckout(t, h, "tok-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.customerCalls != 0 {
		t.Errorf("customer calls = %d, want 0 when a customer exists", fake.customerCalls)
	}
	if fake.lastCustomer != "cus_existing" {
		t.Errorf("session customer = %q, want cus_existing", fake.lastCustomer)
	}
}

func TestCheckoutStripeFailure(t *testing.T) {
	fake := &fakeStripe{sessionErr: errors.New("stripe down")}
	h, _ := newCheckoutEnv(t, fake)

	rec := postCheckout(t, h, "tok-1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "An error occurred while creating the checkout session.") {
		t.Errorf("body = %q, want checkout error message", rec.Body.String())
	}
}
