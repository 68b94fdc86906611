package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		title, filename, want string
	}{
		{"Lease 2024", "lease.pdf", "Lease 2024"},
		{"  ", "contract.pdf", "contract"},
		{"", "nda.final.pdf", "nda.final"},
		{"", "noext", "noext"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DeriveTitle(tc.title, tc.filename), "%q/%q", tc.title, tc.filename)
	}
}
