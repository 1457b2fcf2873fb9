package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/sysmon"
)

// CurrentProfileVersion is bumped whenever the profile layout changes.
const CurrentProfileVersion = 1

// DefaultProfileFileName is created in the user's home directory.
const DefaultProfileFileName = config.DefaultCalibrationProfile

// DefaultMaxAge is how long a profile is trusted before it is ignored.
const DefaultMaxAge = 30 * 24 * time.Hour

// CalibrationProfile is the persisted outcome of a calibration run, together
// with the host fingerprint it is valid for.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	NumCPU         int       `json:"num_cpu"`
	GOMAXPROCS     int       `json:"gomaxprocs"`
	GOARCH         string    `json:"goarch"`
	GOOS           string    `json:"goos"`
	GoVersion      string    `json:"go_version"`
	WordSize       int       `json:"word_size"`
	Host           string    `json:"host,omitempty"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	OptimalWorkers  int    `json:"optimal_workers"`
	OptimalSchedule string `json:"optimal_schedule,omitempty"`

	CalibrationSteps int64  `json:"calibration_steps"`
	CalibrationTime  string `json:"calibration_time,omitempty"`
}

// NewProfile returns an empty profile stamped with the current host.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		NumCPU:         runtime.NumCPU(),
		GOMAXPROCS:     runtime.GOMAXPROCS(0),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
	}
}

// IsValid reports whether the profile was produced on a host like this one.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOMAXPROCS == runtime.GOMAXPROCS(0) &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63)
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	return fmt.Sprintf("calibration profile v%d (%s/%s, %d CPUs, calibrated %s): workers=%d schedule=%s steps=%d",
		p.ProfileVersion, p.GOOS, p.GOARCH, p.NumCPU,
		p.CalibratedAt.Format(time.RFC3339), p.OptimalWorkers, p.OptimalSchedule, p.CalibrationSteps)
}

// SaveProfile writes the profile as indented JSON. The file is written to a
// temporary sibling and renamed so readers never observe a partial profile.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode calibration profile: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".picalc_profile_*")
	if err != nil {
		return fmt.Errorf("create calibration profile: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write calibration profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write calibration profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install calibration profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode calibration profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path. When it is missing or
// unreadable a fresh profile is returned and loaded is false.
func LoadOrCreateProfile(path string) (profile *CalibrationProfile, loaded bool) {
	p, err := loadProfile(path)
	if err != nil {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns ~/.picalc_calibration.json, or the bare file
// name when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

func resolveProfilePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// LoadCachedCalibration applies a valid, fresh profile to cfg. Only values
// the user left at their defaults are replaced.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	p, err := loadProfile(resolveProfilePath(path))
	if err != nil || !p.IsValid() || p.IsStale(DefaultMaxAge) || p.OptimalWorkers < 1 {
		return cfg, false
	}
	applied := false
	if cfg.Workers == 0 {
		cfg.Workers = p.OptimalWorkers
		applied = true
	}
	if p.OptimalSchedule != "" && cfg.Schedule == config.Default().Schedule && cfg.ChunkSize == 0 {
		cfg.Schedule = p.OptimalSchedule
		applied = true
	}
	return cfg, applied
}

func hostDescription() string {
	return sysmon.DescribeHost().String()
}
