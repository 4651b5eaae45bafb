package badger

import (
	"context"
	"testing"

	"github.com/marmos91/attrmeta/pkg/options"
	"github.com/marmos91/attrmeta/pkg/options/providertest"
)

func TestBadgerProviderConformance(t *testing.T) {
	providertest.RunSuite(t, func(t *testing.T) options.Provider {
		p, err := New(context.Background(), Config{Path: t.TempDir()})
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		t.Cleanup(func() {
			if err := p.Close(); err != nil {
				t.Errorf("Close() failed: %v", err)
			}
		})
		return p
	})
}

func TestBadgerProviderInMemory(t *testing.T) {
	providertest.RunSuite(t, func(t *testing.T) options.Provider {
		p, err := New(context.Background(), Config{InMemory: true})
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		t.Cleanup(func() { _ = p.Close() })
		return p
	})
}
