package quota

import (
	"testing"

	"github.com/SmartForms-ai/google-forms-api/internal/model"
)

func TestCheckUnderQuota(t *testing.T) {
	u := &model.UsageRecord{UsageCount: 4}
	if err := Check(u, 5); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestCheckAtQuota(t *testing.T) {
	u := &model.UsageRecord{UsageCount: 5}
	if err := Check(u, 5); err != ErrExceeded {
		t.Fatalf("err = %v, want ErrExceeded", err)
	}
}

func TestCheckPaidBypassesQuota(t *testing.T) {
	u := &model.UsageRecord{UsageCount: 100, HasPaid: true}
	if err := Check(u, 5); err != nil {
		t.Fatalf("paid user denied: %v", err)
	}
}

func TestCheckActiveSubscriptionBypassesQuota(t *testing.T) {
	active := "active"
	u := &model.UsageRecord{UsageCount: 100, SubscriptionStatus: &active}
	if err := Check(u, 5); err != nil {
		t.Fatalf("active subscriber denied: %v", err)
	}
}

func TestCheckPastDueDoesNotBypass(t *testing.T) {
	pastDue := "past_due"
	u := &model.UsageRecord{UsageCount: 5, SubscriptionStatus: &pastDue}
	if err := Check(u, 5); err != ErrExceeded {
		t.Fatalf("err = %v, want ErrExceeded for past_due", err)
	}
}

func TestCheckExactQuotaBoundary(t *testing.T) {
	u := &model.UsageRecord{}
	quota := int64(2)
	allowed := 0
	for i := 0; i < 4; i++ {
		if Check(u, quota) == nil {
			allowed++
			u.UsageCount++
		}
	}
	if allowed != 2 {
		t.Errorf("allowed = %d, want exactly the free quota of 2", allowed)
	}
}
