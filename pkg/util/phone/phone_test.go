package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{"empty", "", "", "", false},
		{"us national", "(202) 456-1111", "US", "+12024561111", false},
		{"default region", "202-456-1111", "", "+12024561111", false},
		{"international", "+44 20 7946 0958", "US", "+442079460958", false},
		{"garbage", "call me", "US", "", true},
		{"too short", "123", "US", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.region)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
