package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

func TestParseExtras(t *testing.T) {
	storages, elements, err := parseExtras(
		[]string{"Bodega Norte"},
		[]string{"Tapa Roja:raw", "Canastilla Grande:tool", "Etiqueta"},
	)
	require.NoError(t, err)
	require.Len(t, storages, 1)
	assert.Equal(t, "bodega-norte", storages[0].Code)
	require.Len(t, elements, 3)
	assert.Equal(t, entity.ElementTypeTool, elements[1].Type)
	assert.Equal(t, entity.ElementTypeRaw, elements[2].Type)
	assert.Equal(t, "etiqueta", elements[2].Code)

	_, _, err = parseExtras(nil, []string{"Tapa:mineral"})
	assert.Error(t, err)
	_, _, err = parseExtras([]string{"  "}, nil)
	assert.Error(t, err)
}
