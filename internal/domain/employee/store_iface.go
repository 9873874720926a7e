package employee

import "context"

// StoreAPI is the employee repository. Finders return a nil employee and a
// nil error when nothing matches.
type StoreAPI interface {
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	// Save inserts emp when its ID is zero and replaces the stored row
	// otherwise. A non-nil Agreement is upserted in the same transaction.
	// ID, CreatedDate, ModifiedDate and Agreement.ID are filled in on success.
	Save(ctx context.Context, emp *Employee) error
	// DeleteByID succeeds whether or not the employee exists.
	DeleteByID(ctx context.Context, id int64) error
}
