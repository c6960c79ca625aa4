// Package storetest provides a reusable contract test for StateStore
// implementations. Every adapter's test suite runs it against a store seeded
// with a known value.
package storetest

import (
	"context"
	"testing"

	"github.com/aretw0/espalier"
)

// Contract verifies that a store seeded with first behaves as a single
// mutable cell: reads observe the seed, writes replace it.
func Contract[S comparable](t *testing.T, store espalier.StateStore[S], first, second S) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Seeded", func(t *testing.T) {
		got, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading seeded state: %v", err)
		}
		if got != first {
			t.Errorf("seeded state mismatch. got %v, want %v", got, first)
		}
	})

	t.Run("Set_Then_Get", func(t *testing.T) {
		if err := store.Set(ctx, second); err != nil {
			t.Fatalf("unexpected error writing state: %v", err)
		}
		got, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading state: %v", err)
		}
		if got != second {
			t.Errorf("state mismatch after write. got %v, want %v", got, second)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := store.Set(ctx, first); err != nil {
			t.Fatalf("unexpected error overwriting state: %v", err)
		}
		got, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading state: %v", err)
		}
		if got != first {
			t.Errorf("state mismatch after overwrite. got %v, want %v", got, first)
		}
	})
}
