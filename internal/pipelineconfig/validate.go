package pipelineconfig

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/wonny/riskbadge/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// scheduler와 같은 형식: 초 필드 포함
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.Version == "" {
		return ValidationError{"meta.version", "required"}
	}

	// === Compute ===
	if cfg.Compute.MinRows < 2 {
		return ValidationError{"compute.min_rows", "must be >= 2"}
	}
	if cfg.Compute.PriceHistoryLimit < cfg.Compute.MinRows {
		return ValidationError{"compute.price_history_limit", "must be >= compute.min_rows"}
	}
	if cfg.Compute.BenchmarkHistoryLimit < 2 {
		return ValidationError{"compute.benchmark_history_limit", "must be >= 2"}
	}
	if cfg.Compute.Workers < 1 || cfg.Compute.Workers > 64 {
		return ValidationError{"compute.workers", "must be in [1, 64]"}
	}

	// === Peer ===
	if cfg.Peer.MinSectorCount < 1 {
		return ValidationError{"peer.min_sector_count", "must be >= 1"}
	}

	// === Risk-free ===
	if err := validateRate(cfg.RiskFreeDefaults.KR); err != nil {
		return ValidationError{"risk_free_defaults.KR", err.Error()}
	}
	if err := validateRate(cfg.RiskFreeDefaults.US); err != nil {
		return ValidationError{"risk_free_defaults.US", err.Error()}
	}
	switch contracts.Maturity(cfg.RiskFreeMaturity) {
	case contracts.MaturityD91, contracts.MaturityY1, contracts.MaturityY3, contracts.MaturityY10:
	default:
		return ValidationError{"risk_free_maturity", fmt.Sprintf("unknown maturity %q", cfg.RiskFreeMaturity)}
	}

	// === Quality ===
	coverages := []struct {
		field string
		value float64
	}{
		{"quality.min_price_coverage", cfg.Quality.MinPriceCoverage},
		{"quality.min_fundamental_coverage", cfg.Quality.MinFundamentalCoverage},
		{"quality.min_factor_coverage", cfg.Quality.MinFactorCoverage},
	}
	for _, c := range coverages {
		if c.value < 0 || c.value > 1 {
			return ValidationError{c.field, "must be in [0, 1]"}
		}
	}

	// === Schedule ===
	if _, err := cronParser.Parse(cfg.Schedule.KR); err != nil {
		return ValidationError{"schedule.kr", err.Error()}
	}
	if _, err := cronParser.Parse(cfg.Schedule.US); err != nil {
		return ValidationError{"schedule.us", err.Error()}
	}

	return nil
}

// 연 % 단위: 음수 금리는 허용, 비정상적으로 큰 값은 단위 오류로 간주
func validateRate(pct float64) error {
	if pct < -5 || pct > 50 {
		return fmt.Errorf("must be a percentage in [-5, 50], got %v", pct)
	}
	return nil
}
