package history

import "context"

// NullStore is a no-op store that records nothing.
// Used when history is disabled and in tests.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Append does nothing.
func (s *NullStore) Append(ctx context.Context, rec Record) error {
	return nil
}

// Recent always returns an empty list.
func (s *NullStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	return nil, nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
