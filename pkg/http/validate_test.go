package http

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Symbol string   `json:"symbol" validate:"required,max=4"`
	Assets []string `json:"assets" validate:"required,min=1,dive,max=3"`
	Price  float64  `json:"price" validate:"gt=0"`
	Score  int      `json:"score" validate:"gte=0,lte=100"`
	TF     string   `json:"tf" validate:"oneof=1h 1d"`
}

func validTagged() tagged {
	return tagged{Symbol: "BTC", Assets: []string{"BTC"}, Price: 1, Score: 50, TF: "1h"}
}

func TestToValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*tagged)
		want   ValidationError
	}{
		{"required", func(v *tagged) { v.Symbol = "" },
			ValidationError{Code: "ERR_REQUIRED", Field: "symbol", Message: "symbol is required"}},
		{"max string", func(v *tagged) { v.Symbol = "ABCDEF" },
			ValidationError{Code: "ERR_MAX", Field: "symbol", Message: "symbol must have at most 4 characters", Params: map[string]interface{}{"max": "4"}}},
		{"min slice", func(v *tagged) { v.Assets = []string{} },
			ValidationError{Code: "ERR_MIN", Field: "assets", Message: "assets must have at least 1 items", Params: map[string]interface{}{"min": "1"}}},
		{"dive element", func(v *tagged) { v.Assets = []string{"ABCD"} },
			ValidationError{Code: "ERR_MAX", Field: "assets[0]", Message: "assets[0] must have at most 3 characters", Params: map[string]interface{}{"max": "3"}}},
		{"gt", func(v *tagged) { v.Price = 0 },
			ValidationError{Code: "ERR_GT", Field: "price", Message: "price must be greater than 0", Params: map[string]interface{}{"value": "0"}}},
		{"gte", func(v *tagged) { v.Score = -1 },
			ValidationError{Code: "ERR_GTE", Field: "score", Message: "score must be at least 0", Params: map[string]interface{}{"min": "0"}}},
		{"lte", func(v *tagged) { v.Score = 101 },
			ValidationError{Code: "ERR_LTE", Field: "score", Message: "score must be at most 100", Params: map[string]interface{}{"max": "100"}}},
		{"oneof", func(v *tagged) { v.TF = "5m" },
			ValidationError{Code: "ERR_ONEOF", Field: "tf", Message: "tf must be one of: 1h, 1d", Params: map[string]interface{}{"options": []string{"1h", "1d"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validTagged()
			tt.mutate(&v)
			got := toValidationErrors(validate.Struct(v))
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestToValidationErrors_Plain(t *testing.T) {
	require.NoError(t, validate.Struct(validTagged()))

	got := toValidationErrors(errors.New("unexpected EOF"))
	assert.Equal(t, []ValidationError{{Code: "ERR_UNKNOWN", Message: "unexpected EOF"}}, got)
}
