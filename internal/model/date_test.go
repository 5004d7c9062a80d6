package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Date
	}{
		{"date only", `"2024-06-15"`, NewDate(2024, time.June, 15)},
		{"rfc3339", `"2024-06-15T00:00:00Z"`, NewDate(2024, time.June, 15)},
		{"rfc3339 with millis", `"2024-06-15T10:30:00.123Z"`, Date{Time: time.Date(2024, 6, 15, 10, 30, 0, 123000000, time.UTC)}},
		{"empty", `""`, Date{}},
		{"null", `null`, Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Date
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
		})
	}

	var bad Date
	assert.Error(t, json.Unmarshal([]byte(`"15/06/2024"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`20240615`), &bad))
}

func TestDateMarshal(t *testing.T) {
	raw, err := json.Marshal(NewDate(2024, time.June, 15))
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-15"`, string(raw))

	raw, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(raw))
}

func TestProductKeepsCatalogueFields(t *testing.T) {
	in := `{"id":"p1","name":"Robe","price":5000,"quantity":3,"minThreshold":1,` +
		`"expirationDate":"2024-06-15","size":"M","image":"data:image/png;base64,AA==",` +
		`"customAttributes":{"couleur":"bleu","bio":true}}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	require.True(t, p.HasExpiry())
	assert.Equal(t, "2024-06-15", p.ExpirationDate.Format("2006-01-02"))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"expirationDate":"2024-06-15"`)
	assert.Contains(t, string(out), `"size":"M"`)
	assert.Contains(t, string(out), `"image":"data:image/png;base64,AA=="`)
	assert.JSONEq(t, `{"couleur":"bleu","bio":true}`, string(p.CustomAttributes))
}
