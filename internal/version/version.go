// Package version - сведения о сборке сервера и бота.
//
// Поля заполняются через -ldflags (см. tools/buildid). Если коммит не передан,
// берется ревизия VCS, которую go build записывает в бинарник.
package version

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"gridsync/pkg/api"
)

var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

// ErrNoBuildDate - бинарник собран без -X BuildDate.
var ErrNoBuildDate = errors.New("build date not set")

// buildEpoch - день первого коммита gridsync. BuildID считается в днях от него.
var buildEpoch = time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

// VersionInfo отдается на /version.
type VersionInfo struct {
	BuildID    int    `json:"build_id"`
	BuildDate  string `json:"build_date,omitempty"`
	Commit     string `json:"commit,omitempty"`
	Branch     string `json:"branch,omitempty"`
	CI         string `json:"ci,omitempty"`
	Protocol   uint64 `json:"protocol"`
	GoVersion  string `json:"go_version"`
	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

// BuildIDFor переводит дату сборки в номер: дни от buildEpoch.
func BuildIDFor(date string) (int, error) {
	if date == "" {
		return 0, ErrNoBuildDate
	}
	t, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("build date %s is before %s", date, buildEpoch.Format(time.DateOnly))
	}
	return int(t.Sub(buildEpoch) / (24 * time.Hour)), nil
}

// CalculateBuildID - номер текущей сборки.
func CalculateBuildID() (int, error) {
	return BuildIDFor(BuildDate)
}

func Info() VersionInfo {
	info := VersionInfo{
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		CI:        BuildCI,
		Protocol:  api.ProtocolID,
		GoVersion: runtime.Version(),
	}
	if info.Commit == "" {
		info.Commit = vcsRevision()
	}

	id, err := CalculateBuildID()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	info.Calculated = true
	return info
}

// String - строка для логов и `gridsync version`.
func String() string {
	info := Info()
	build := "unknown"
	if info.Calculated {
		build = fmt.Sprintf("%d (%s)", info.BuildID, info.BuildDate)
	}
	return fmt.Sprintf("gridsync build %s protocol %d commit[%s] branch[%s] ci[%s]",
		build,
		info.Protocol,
		orDefault(info.Commit, "unknown"),
		orDefault(info.Branch, "unknown"),
		orDefault(info.CI, "local"),
	)
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
