package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

func TestCheckQuantity(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"1", true},
		{"1.0001", true},
		{"1.00010000", true},
		{"99999999999999.9999", true},
		{"1.00005", false},
		{"0.00001", false},
		{"100000000000000", false},
	}
	for _, tc := range cases {
		err := entity.CheckQuantity(decimal.RequireFromString(tc.in))
		if tc.ok {
			assert.NoError(t, err, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}
