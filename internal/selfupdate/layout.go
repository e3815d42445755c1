package selfupdate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrChecksum is returned when a download does not match the manifest.
var ErrChecksum = errors.New("checksum verification failed")

// Layout names the files a release publishes:
//
//	cbseprep_1.4.0_linux_amd64.tar.gz
//	cbseprep_1.4.0_windows_amd64.zip
//	cbseprep_1.4.0_checksums.txt
//
// Versions appear without the leading "v".
type Layout struct {
	Binary string
}

// DefaultLayout is the layout of official cbseprep releases.
var DefaultLayout = Layout{Binary: BinaryName}

// Asset is one downloadable archive of a release.
type Asset struct {
	Name string
	Zip  bool

	// Binary is the file name of the executable inside the archive.
	Binary string
}

// Asset returns the archive built for goos/goarch at version.
func (l Layout) Asset(version, goos, goarch string) (Asset, error) {
	switch goarch {
	case "amd64", "arm64":
	default:
		return Asset{}, fmt.Errorf("no %s release for architecture %s", l.Binary, goarch)
	}

	base := fmt.Sprintf("%s_%s_%s_%s", l.Binary, bare(version), goos, goarch)
	switch goos {
	case "linux", "darwin":
		return Asset{Name: base + ".tar.gz", Binary: l.Binary}, nil
	case "windows":
		return Asset{Name: base + ".zip", Zip: true, Binary: l.Binary + ".exe"}, nil
	default:
		return Asset{}, fmt.Errorf("no %s release for operating system %s", l.Binary, goos)
	}
}

// ManifestName is the checksum file published with version.
func (l Layout) ManifestName(version string) string {
	return fmt.Sprintf("%s_%s_checksums.txt", l.Binary, bare(version))
}

func bare(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// Manifest maps asset names to their hex SHA-256 digests.
type Manifest map[string]string

// ParseManifest reads sha256sum output. Both "digest  name" and the binary
// mode form "digest *name" are accepted.
func ParseManifest(data []byte) (Manifest, error) {
	m := make(Manifest)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		digest, name, ok := strings.Cut(line, " ")
		name = strings.TrimPrefix(strings.TrimSpace(name), "*")
		if !ok || name == "" {
			return nil, fmt.Errorf("checksums line %d: expected \"digest name\"", i+1)
		}
		if b, err := hex.DecodeString(digest); err != nil || len(b) != sha256.Size {
			return nil, fmt.Errorf("checksums line %d: %q is not a SHA-256 digest", i+1, digest)
		}
		m[name] = strings.ToLower(digest)
	}
	return m, nil
}

// Verify checks data against the digest listed for name.
func (m Manifest) Verify(name string, data []byte) error {
	want, ok := m[name]
	if !ok {
		return fmt.Errorf("%w: %s is not listed", ErrChecksum, name)
	}
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != want {
		return fmt.Errorf("%w: %s has digest %s, want %s", ErrChecksum, name, got, want)
	}
	return nil
}
