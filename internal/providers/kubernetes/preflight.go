package kubernetes

import (
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"k8s.io/client-go/discovery"
)

// CheckServerVersion fails when the API server is older than
// minVersion. An empty minVersion disables the check.
func CheckServerVersion(client discovery.ServerVersionInterface, minVersion string) error {
	if minVersion == "" {
		return nil
	}
	want, err := semver.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("parse minimum server version %q: %w", minVersion, err)
	}

	info, err := client.ServerVersion()
	if err != nil {
		return classify("server version", err)
	}
	got, err := semver.NewVersion(info.GitVersion)
	if err != nil {
		return fmt.Errorf("parse server version %q: %w", info.GitVersion, err)
	}

	// Pre-release and build suffixes (e.g. "-eks-1234") must not make a
	// compliant server look older.
	release, err := got.SetPrerelease("")
	if err != nil {
		return fmt.Errorf("normalize server version %q: %w", info.GitVersion, err)
	}
	if release.LessThan(want) {
		return fmt.Errorf("kubernetes %s is not supported, need %s or newer", got.Original(), want.Original())
	}

	slog.Info("api server version accepted", "version", got.Original(), "minimum", want.Original())
	return nil
}
