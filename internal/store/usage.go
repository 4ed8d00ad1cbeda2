package store

import (
	"database/sql"
	"fmt"

	"github.com/SmartForms-ai/google-forms-api/internal/model"
)

type UsageStore struct {
	db *sql.DB
}

func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

func scanUsage(scanner interface{ Scan(...any) error }) (*model.UsageRecord, error) {
	var u model.UsageRecord
	var hasPaid int
	var customerID, status sql.NullString
	err := scanner.Scan(
		&u.ID, &u.Email, &u.UsageCount, &hasPaid,
		&customerID, &status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.HasPaid = hasPaid != 0
	if customerID.Valid {
		u.StripeCustomerID = &customerID.String
	}
	if status.Valid {
		u.SubscriptionStatus = &status.String
	}
	return &u, nil
}

const usageCols = `id, email, usage_count, has_paid, stripe_customer_id, subscription_status, created_at, updated_at`

func (s *UsageStore) GetByEmail(email string) (*model.UsageRecord, error) {
	row := s.db.QueryRow(`SELECT `+usageCols+` FROM usage_records WHERE email = ?`, email)
	u, err := scanUsage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get usage record: %w", err)
	}
	return u, nil
}

func (s *UsageStore) GetByStripeCustomerID(customerID string) (*model.UsageRecord, error) {
	row := s.db.QueryRow(`SELECT `+usageCols+` FROM usage_records WHERE stripe_customer_id = ?`, customerID)
	u, err := scanUsage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get usage record by customer: %w", err)
	}
	return u, nil
}

// GetOrCreate returns the record for email, creating a fresh one on first use.
// Concurrent first calls for the same email are safe: the insert ignores
// conflicts and both callers read back the same row.
func (s *UsageStore) GetOrCreate(email string) (*model.UsageRecord, error) {
	_, err := s.db.Exec(
		`INSERT INTO usage_records (email) VALUES (?) ON CONFLICT(email) DO NOTHING`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("insert usage record: %w", err)
	}
	return s.GetByEmail(email)
}

// IncrementUsage adds one to the usage counter for email. The increment is a
// single SQL update so concurrent successes for the same email never lose a
// count.
func (s *UsageStore) IncrementUsage(email string) error {
	_, err := s.db.Exec(
		`UPDATE usage_records SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		email,
	)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// SetStripeCustomerID records the Stripe customer id. The id is written once;
// later calls for a record that already has one are no-ops.
func (s *UsageStore) SetStripeCustomerID(id int64, customerID string) error {
	_, err := s.db.Exec(
		`UPDATE usage_records SET stripe_customer_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stripe_customer_id IS NULL`,
		customerID, id,
	)
	if err != nil {
		return fmt.Errorf("set stripe customer id: %w", err)
	}
	return nil
}

func (s *UsageStore) UpdateSubscription(id int64, status string, hasPaid bool) error {
	var paid int
	if hasPaid {
		paid = 1
	}
	_, err := s.db.Exec(
		`UPDATE usage_records SET subscription_status = ?, has_paid = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, paid, id,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

// ResetAllUsage zeroes every usage counter. Entitlement fields are untouched.
func (s *UsageStore) ResetAllUsage() (int64, error) {
	result, err := s.db.Exec(
		`UPDATE usage_records SET usage_count = 0, updated_at = CURRENT_TIMESTAMP WHERE usage_count > 0`,
	)
	if err != nil {
		return 0, fmt.Errorf("reset usage counts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
