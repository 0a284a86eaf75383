package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Content string   `json:"content" validate:"required"`
	Count   int      `json:"count" validate:"min=0,max=50"`
	Niches  []string `json:"niches" validate:"max=3"`
	Mode    string   `json:"mode,omitempty" validate:"omitempty,oneof=fast slow"`
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   testRequest
		field   string
		message string
	}{
		{
			name:  "valid",
			input: testRequest{Content: "hello", Count: 3},
		},
		{
			name:    "missing content",
			input:   testRequest{Count: 1},
			field:   "content",
			message: "content is required",
		},
		{
			name:    "count too large",
			input:   testRequest{Content: "x", Count: 51},
			field:   "count",
			message: "count must be at most 50",
		},
		{
			name:    "negative count",
			input:   testRequest{Content: "x", Count: -1},
			field:   "count",
			message: "count must be at least 0",
		},
		{
			name:    "too many niches",
			input:   testRequest{Content: "x", Niches: []string{"a", "b", "c", "d"}},
			field:   "niches",
			message: "niches must be at most 3",
		},
		{
			name:    "unknown mode",
			input:   testRequest{Content: "x", Mode: "medium"},
			field:   "mode",
			message: "mode must be one of: fast slow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.field == "" {
				assert.Nil(t, err)
				return
			}

			require.NotNil(t, err)
			require.Len(t, err.Errors(), 1)
			assert.Equal(t, tt.field, err.Errors()[0].Field())
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&testRequest{})
	require.NotNil(t, single)

	apiErr := single.ToAPIError()
	assert.Equal(t, ErrorCode, apiErr.Code)
	assert.Equal(t, "content is required", apiErr.Message)
	assert.Equal(t, "content", apiErr.Details["field"])

	multi := ValidateStruct(&testRequest{Count: 99})
	require.NotNil(t, multi)

	apiErr = multi.ToAPIError()
	assert.Equal(t, "content: content is required; count: count must be at most 50", apiErr.Message)
	assert.Len(t, apiErr.Details["fields"], 2)

	empty := &RequestValidationError{}
	assert.Equal(t, "Validation failed", empty.ToAPIError().Message)
	assert.Equal(t, "validation failed", empty.Error())
}
