package selfupdate

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutAsset(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         Asset
		wantErr      bool
	}{
		{"linux", "amd64", Asset{Name: "cbseprep_1.4.0_linux_amd64.tar.gz", Binary: "cbseprep"}, false},
		{"linux", "arm64", Asset{Name: "cbseprep_1.4.0_linux_arm64.tar.gz", Binary: "cbseprep"}, false},
		{"darwin", "arm64", Asset{Name: "cbseprep_1.4.0_darwin_arm64.tar.gz", Binary: "cbseprep"}, false},
		{"windows", "amd64", Asset{Name: "cbseprep_1.4.0_windows_amd64.zip", Zip: true, Binary: "cbseprep.exe"}, false},
		{"linux", "386", Asset{}, true},
		{"freebsd", "amd64", Asset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := DefaultLayout.Asset("v1.4.0", tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayoutVersionWithoutPrefix(t *testing.T) {
	a, err := DefaultLayout.Asset("1.4.0", "linux", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "cbseprep_1.4.0_linux_amd64.tar.gz", a.Name)
	assert.Equal(t, "cbseprep_1.4.0_checksums.txt", DefaultLayout.ManifestName("v1.4.0"))
	assert.Equal(t, "cbseprep_1.4.0_checksums.txt", DefaultLayout.ManifestName("1.4.0"))
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestParseManifest(t *testing.T) {
	a, b := digest([]byte("a")), digest([]byte("b"))

	m, err := ParseManifest([]byte(a + "  cbseprep_1.4.0_linux_amd64.tar.gz\n\n" + b + " *cbseprep_1.4.0_windows_amd64.zip\n"))
	require.NoError(t, err)
	assert.Equal(t, Manifest{
		"cbseprep_1.4.0_linux_amd64.tar.gz": a,
		"cbseprep_1.4.0_windows_amd64.zip":  b,
	}, m)

	empty, err := ParseManifest(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseManifestRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"missing name": digest([]byte("a")) + "\n",
		"short digest": "abc123  cbseprep.tar.gz\n",
		"not hex":      "zz" + digest([]byte("a"))[2:] + "  cbseprep.tar.gz\n",
		"name only":    "cbseprep.tar.gz\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestManifestVerify(t *testing.T) {
	data := []byte("release archive")
	m := Manifest{"cbseprep.tar.gz": digest(data)}

	assert.NoError(t, m.Verify("cbseprep.tar.gz", data))
	assert.ErrorIs(t, m.Verify("cbseprep.tar.gz", []byte("tampered")), ErrChecksum)
	assert.ErrorIs(t, m.Verify("other.tar.gz", data), ErrChecksum)
}
