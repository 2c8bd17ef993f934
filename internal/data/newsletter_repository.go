package data

import (
	"context"
	"database/sql"
	"errors"
	"mbs-hub/internal/common"
	"time"
)

// SQLNewsletterRepository stores newsletter subscriptions.
type SQLNewsletterRepository struct {
	conn DBProvider
	now  func() time.Time
}

// NewSQLNewsletterRepository creates a new SQLNewsletterRepository.
func NewSQLNewsletterRepository(conn DBProvider) *SQLNewsletterRepository {
	return &SQLNewsletterRepository{conn: conn, now: time.Now}
}

// Subscribe records email as subscribed. An existing row is reactivated by
// clearing its unsubscribe date, so repeated calls succeed.
func (r *SQLNewsletterRepository) Subscribe(ctx context.Context, email string) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return common.NewStoreError("subscribe newsletter", err)
	}

	insert := `INSERT INTO newsletter_subscriptions (email, subscribed_at) VALUES (?, ?)`
	_, err = db.ExecContext(ctx, db.Rebind(insert), email, r.now().UTC())
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return common.NewStoreError("subscribe newsletter", err)
	}

	// Already on the list: reactivate.
	reactivate := `UPDATE newsletter_subscriptions SET unsubscribed_at = NULL WHERE email = ?`
	if _, err := db.ExecContext(ctx, db.Rebind(reactivate), email); err != nil {
		return common.NewStoreError("resubscribe newsletter", err)
	}
	return nil
}

// Unsubscribe marks email as unsubscribed. Unknown or already unsubscribed
// addresses are left alone.
func (r *SQLNewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return common.NewStoreError("unsubscribe newsletter", err)
	}
	query := `UPDATE newsletter_subscriptions SET unsubscribed_at = ? WHERE email = ? AND unsubscribed_at IS NULL`
	if _, err := db.ExecContext(ctx, db.Rebind(query), r.now().UTC(), email); err != nil {
		return common.NewStoreError("unsubscribe newsletter", err)
	}
	return nil
}

// GetSubscription returns the subscription for email or nil.
func (r *SQLNewsletterRepository) GetSubscription(ctx context.Context, email string) (*NewsletterSubscription, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, common.NewStoreError("get subscription", err)
	}
	var sub NewsletterSubscription
	query := `SELECT id, email, subscribed_at, unsubscribed_at FROM newsletter_subscriptions WHERE email = ?`
	if err := db.GetContext(ctx, &sub, db.Rebind(query), email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, common.NewStoreError("get subscription", err)
	}
	return &sub, nil
}
