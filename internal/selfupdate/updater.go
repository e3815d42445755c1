package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/store"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
)

// maxDownloadSize caps a single release download.
const maxDownloadSize = 128 << 20

// Stage is a step of Update, reported as it starts.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageInstall  Stage = "install"
)

type UpdateInput struct {
	CurrentVersion string

	// TargetVersion pins a release tag. Empty means the latest release.
	TargetVersion string

	// OnStage, if set, is called as each stage starts.
	OnStage func(Stage, string)
}

// UpdateResult describes an installed release.
type UpdateResult struct {
	FromVersion string
	ToVersion   string
	Asset       string
	Path        string
}

// Update replaces the running executable with another release. The
// archive is checked against the release's checksum manifest before the
// executable is touched. Every call is recorded when a Recorder is set,
// including refusals and failures.
func (c *Checker) Update(ctx context.Context, input *UpdateInput) (res *UpdateResult, err error) {
	res = &UpdateResult{FromVersion: input.CurrentVersion, ToVersion: input.TargetVersion}
	defer func() { c.record(ctx, res, err) }()

	if input.CurrentVersion == DevVersion || input.CurrentVersion == "" {
		return res, ErrDevBuild
	}

	if res.ToVersion == "" {
		c.stage(input, StageCheck, "Looking for a newer release...")
		check, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return res, fmt.Errorf("check for updates: %w", err)
		}
		if !check.UpdateAvailable {
			return res, ErrAlreadyLatest
		}
		res.ToVersion = check.LatestVersion
	}

	asset, err := c.layout.Asset(res.ToVersion, c.goos, c.goarch)
	if err != nil {
		return res, err
	}
	res.Asset = asset.Name

	c.stage(input, StageDownload, fmt.Sprintf("Downloading %s...", asset.Name))
	archive, err := c.download(ctx, res.ToVersion, asset.Name)
	if err != nil {
		return res, fmt.Errorf("download archive: %w", err)
	}

	c.stage(input, StageVerify, "Verifying checksum...")
	manifestData, err := c.download(ctx, res.ToVersion, c.layout.ManifestName(res.ToVersion))
	if err != nil {
		return res, fmt.Errorf("download checksums: %w", err)
	}
	manifest, err := ParseManifest(manifestData)
	if err != nil {
		return res, err
	}
	if err := manifest.Verify(asset.Name, archive); err != nil {
		return res, err
	}
	binary, err := extract(archive, asset)
	if err != nil {
		return res, fmt.Errorf("extract %s: %w", asset.Name, err)
	}

	target, err := c.execPath()
	if err != nil {
		return res, fmt.Errorf("resolve executable path: %w", err)
	}
	res.Path = target

	c.stage(input, StageInstall, fmt.Sprintf("Installing %s...", res.ToVersion))
	if err := install(target, binary); err != nil {
		return res, fmt.Errorf("install: %w", err)
	}
	return res, nil
}

func (c *Checker) stage(input *UpdateInput, s Stage, msg string) {
	c.logger.Info("update", zap.String("stage", string(s)), zap.String("detail", msg))
	if input.OnStage != nil {
		input.OnStage(s, msg)
	}
}

func (c *Checker) record(ctx context.Context, res *UpdateResult, err error) {
	data := store.UpdateEventData{
		FromVersion: res.FromVersion,
		ToVersion:   res.ToVersion,
		Asset:       res.Asset,
		Success:     err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		c.logger.Warn("update failed", zap.String("from", res.FromVersion), zap.String("to", res.ToVersion), zap.Error(err))
	} else {
		c.logger.Info("update installed", zap.String("from", res.FromVersion), zap.String("to", res.ToVersion), zap.String("path", res.Path))
	}

	if c.recorder == nil {
		return
	}
	if recErr := c.recorder.AppendUpdateEvent(context.WithoutCancel(ctx), data); recErr != nil {
		c.logger.Warn("failed to record update event", zap.Error(recErr))
	}
}

// download fetches one file of the release tagged tag.
func (c *Checker) download(ctx context.Context, tag, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/releases/download/%s/%s",
		strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxDownloadSize)
	}
	return data, nil
}

// install writes binary next to target and renames it into place, keeping
// target's permissions. target is left untouched on any error.
func install(target string, binary []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".new-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(binary); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
