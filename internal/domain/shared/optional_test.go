package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchDoc struct {
	Title       Optional[string] `json:"title,omitzero"`
	Description Optional[string] `json:"description,omitzero"`
}

func TestOptional_Unmarshal(t *testing.T) {
	t.Run("omitted member stays unset", func(t *testing.T) {
		var doc patchDoc
		require.NoError(t, json.Unmarshal([]byte(`{}`), &doc))
		assert.False(t, doc.Title.Set)
		assert.False(t, doc.Description.Set)
	})

	t.Run("explicit null is set and null", func(t *testing.T) {
		var doc patchDoc
		require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &doc))
		assert.True(t, doc.Description.Set)
		assert.True(t, doc.Description.Null)
		assert.False(t, doc.Description.HasValue())
		assert.False(t, doc.Title.Set)
	})

	t.Run("value is set", func(t *testing.T) {
		var doc patchDoc
		require.NoError(t, json.Unmarshal([]byte(`{"title":"Plan sprint","description":""}`), &doc))
		assert.True(t, doc.Title.HasValue())
		assert.Equal(t, "Plan sprint", doc.Title.Value)
		assert.True(t, doc.Description.HasValue())
		assert.Equal(t, "", doc.Description.Value)
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		var doc patchDoc
		assert.Error(t, json.Unmarshal([]byte(`{"title":12}`), &doc))
	})
}

func TestOptional_Marshal(t *testing.T) {
	doc := patchDoc{
		Title:       Some("Ship"),
		Description: Null[string](),
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Ship","description":null}`, string(data))

	data, err = json.Marshal(patchDoc{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
