package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		expected string
	}{
		{
			name:     "substitutes known variables",
			template: "Hi {customerName}, order {orderId}",
			vars:     map[string]string{"customerName": "Asha", "orderId": "ORD-1"},
			expected: "Hi Asha, order ORD-1",
		},
		{
			name:     "unknown placeholder left verbatim",
			template: "Hello {customerName}, {unknownVar} here",
			vars:     map[string]string{"customerName": "Asha"},
			expected: "Hello Asha, {unknownVar} here",
		},
		{
			name:     "repeated placeholder replaced everywhere",
			template: "{orderId} / {orderId}",
			vars:     map[string]string{"orderId": "ORD-9"},
			expected: "ORD-9 / ORD-9",
		},
		{
			name:     "no placeholders",
			template: "plain message",
			vars:     map[string]string{"orderId": "ORD-9"},
			expected: "plain message",
		},
		{
			name:     "empty vars leaves template untouched",
			template: "Hi {customerName}",
			vars:     nil,
			expected: "Hi {customerName}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, tt.vars))
		})
	}
}
