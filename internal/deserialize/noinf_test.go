//go:build cqlcell_noinf

package deserialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryInfDecimalUnavailable(t *testing.T) {
	_, err := NewRegistry(Options{Decimal: DecimalModeInf})
	assert.ErrorIs(t, err, ErrModeUnavailable)
}
