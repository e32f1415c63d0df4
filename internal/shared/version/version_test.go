package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(" "))
	assert.Equal(t, "v1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "v1.2.3", Normalize("v1.2.3"))
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		version string
		want    string
		release bool
	}{
		{version: "dev", want: "dev"},
		{version: "", want: "dev"},
		{version: "1.4", want: "v1.4.0", release: true},
		{version: "v2.0.1-rc.1", want: "v2.0.1-rc.1"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			old := Version
			Version = tt.version
			t.Cleanup(func() { Version = old })

			assert.Equal(t, tt.want, Current())
			assert.Equal(t, tt.release, IsRelease())
		})
	}
}
