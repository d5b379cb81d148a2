// Package mocks provides centralized mock implementations for testing.
//
// Each mock implements one interface from internal/store or
// internal/service/auth. Most are backed by in-memory data so tests can seed
// state directly, and expose function fields to override single methods:
//
//	tasks := mocks.NewMockTaskStore(task)
//	tasks.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	    return nil, errors.New("db down")
//	}
//
// TestifyMockUserStore is the exception: it is built on testify/mock for
// tests that assert exact call expectations.
package mocks
