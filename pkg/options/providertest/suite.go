// Package providertest provides a conformance test suite for option
// providers.
//
// Every backend runs the same suite so behavior stays identical across
// memory, file, BadgerDB, and SQL implementations.
package providertest

import (
	"context"
	"errors"
	"testing"

	"github.com/marmos91/attrmeta/pkg/options"
)

// ProviderFactory creates a fresh, empty provider for a test. Cleanup
// should be registered on t.
type ProviderFactory func(t *testing.T) options.Provider

// RunSuite runs all provider conformance tests against the factory.
func RunSuite(t *testing.T, factory ProviderFactory) {
	t.Run("LoadAbsent", func(t *testing.T) { testLoadAbsent(t, factory) })
	t.Run("SaveThenLoad", func(t *testing.T) { testSaveThenLoad(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory) })
	t.Run("DeleteAbsent", func(t *testing.T) { testDeleteAbsent(t, factory) })
	t.Run("EmptyValue", func(t *testing.T) { testEmptyValue(t, factory) })
	t.Run("IndependentNames", func(t *testing.T) { testIndependentNames(t, factory) })
	t.Run("InvalidName", func(t *testing.T) { testInvalidName(t, factory) })
}

func testLoadAbsent(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	_, err := p.Load(ctx, "never_saved")
	if !errors.Is(err, options.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func testSaveThenLoad(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	want := []byte(`{"42":{"use_in_filter":true}}`)
	if err := p.Save(ctx, "attribute_meta", want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := p.Load(ctx, "attribute_meta")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Load() = %q, want %q", got, want)
	}
}

func testOverwrite(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	if err := p.Save(ctx, "blob", []byte("first")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := p.Save(ctx, "blob", []byte("second")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := p.Load(ctx, "blob")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Load() = %q, want %q", got, "second")
	}
}

func testDelete(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	if err := p.Save(ctx, "blob", []byte("value")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := p.Delete(ctx, "blob"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	_, err := p.Load(ctx, "blob")
	if !errors.Is(err, options.ErrNotFound) {
		t.Fatalf("Load() after Delete() error = %v, want ErrNotFound", err)
	}
}

func testDeleteAbsent(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	if err := p.Delete(ctx, "never_saved"); err != nil {
		t.Fatalf("Delete() of absent name failed: %v", err)
	}
}

func testEmptyValue(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	if err := p.Save(ctx, "blob", []byte{}); err != nil {
		t.Fatalf("Save() of empty value failed: %v", err)
	}

	got, err := p.Load(ctx, "blob")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %q, want empty", got)
	}
}

func testIndependentNames(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	if err := p.Save(ctx, "first", []byte("a")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := p.Save(ctx, "second", []byte("b")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := p.Delete(ctx, "first"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	got, err := p.Load(ctx, "second")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "b" {
		t.Errorf("Load() = %q, want %q", got, "b")
	}
}

func testInvalidName(t *testing.T, factory ProviderFactory) {
	p := factory(t)
	ctx := context.Background()

	if err := p.Save(ctx, "", []byte("x")); err == nil {
		t.Error("Save() with empty name should fail")
	}
	if _, err := p.Load(ctx, ""); err == nil {
		t.Error("Load() with empty name should fail")
	}
}
