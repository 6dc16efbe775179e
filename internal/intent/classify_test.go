package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/answer-engine/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  model.Intent
	}{
		{"how to fix python error", model.IntentTechnical},
		{"DEBUG segfault in rust", model.IntentTechnical},
		{"best price for noise cancelling headphones", model.IntentShopping},
		{"macbook vs thinkpad", model.IntentShopping},
		{"latest developments in fusion energy", model.IntentNews},
		{"what is quantum entanglement", model.IntentResearch},
		{"history of the silk road", model.IntentResearch},
		{"pancakes", model.IntentGeneral},
		{"", model.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassify_OrderedPrecedence(t *testing.T) {
	// Contains both technical ("install") and shopping ("price")
	// keywords; the technical set is evaluated first.
	assert.Equal(t, model.IntentTechnical, Classify("install price tracker"))
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, model.IntentTechnical, Classify("how to fix python error"))
	}
}
