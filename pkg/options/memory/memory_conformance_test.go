package memory

import (
	"testing"

	"github.com/marmos91/attrmeta/pkg/options"
	"github.com/marmos91/attrmeta/pkg/options/providertest"
)

func TestMemoryProviderConformance(t *testing.T) {
	providertest.RunSuite(t, func(t *testing.T) options.Provider {
		return New()
	})
}
