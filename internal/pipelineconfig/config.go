package pipelineconfig

import "github.com/wonny/riskbadge/internal/contracts"

// Config는 지표 계산 + 배지 배치의 전체 설정
type Config struct {
	Meta             Meta             `yaml:"meta" json:"meta"`
	Compute          Compute          `yaml:"compute" json:"compute"`
	Peer             Peer             `yaml:"peer" json:"peer"`
	RiskFreeDefaults RiskFreeDefaults `yaml:"risk_free_defaults" json:"risk_free_defaults"`
	RiskFreeMaturity string           `yaml:"risk_free_maturity" json:"risk_free_maturity"`
	Quality          Quality          `yaml:"quality" json:"quality"`
	Schedule         Schedule         `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	Version string `yaml:"version" json:"version"`
}

// Compute 지표 계산 파라미터
type Compute struct {
	MinRows               int `yaml:"min_rows" json:"min_rows"`                               // 종목당 최소 일봉 수
	PriceHistoryLimit     int `yaml:"price_history_limit" json:"price_history_limit"`         // 종목당 조회 일봉 수
	BenchmarkHistoryLimit int `yaml:"benchmark_history_limit" json:"benchmark_history_limit"` // 벤치마크 조회 일봉 수
	Workers               int `yaml:"workers" json:"workers"`                                 // 종목 병렬 처리 수
}

// Peer 섹터/시장 비교 기준
type Peer struct {
	MinSectorCount int `yaml:"min_sector_count" json:"min_sector_count"`
}

// RiskFreeDefaults 무위험수익률 미수집 시 기본값 (연 %)
type RiskFreeDefaults struct {
	KR float64 `yaml:"KR" json:"KR"`
	US float64 `yaml:"US" json:"US"`
}

// For returns the default rate of a country
func (d RiskFreeDefaults) For(country contracts.Country) float64 {
	if country == contracts.CountryUS {
		return d.US
	}
	return d.KR
}

// Quality 입력 데이터 커버리지 게이트 (0~1)
// 가격 커버리지 미달 시 실행 중단, 나머지는 경고만
type Quality struct {
	MinPriceCoverage       float64 `yaml:"min_price_coverage" json:"min_price_coverage"`
	MinFundamentalCoverage float64 `yaml:"min_fundamental_coverage" json:"min_fundamental_coverage"`
	MinFactorCoverage      float64 `yaml:"min_factor_coverage" json:"min_factor_coverage"`
}

// Schedule 배치 실행 시각 (cron, 초 단위 포함)
type Schedule struct {
	KR string `yaml:"kr" json:"kr"`
	US string `yaml:"us" json:"us"`
}

// Default returns the configuration shipped in config/pipeline.yaml
func Default() *Config {
	return &Config{
		Meta: Meta{Version: "1"},
		Compute: Compute{
			MinRows:               60,
			PriceHistoryLimit:     300,
			BenchmarkHistoryLimit: 300,
			Workers:               8,
		},
		Peer: Peer{MinSectorCount: 5},
		RiskFreeDefaults: RiskFreeDefaults{
			KR: 3.0,
			US: 4.0,
		},
		RiskFreeMaturity: string(contracts.MaturityD91),
		Quality: Quality{
			MinPriceCoverage:       0.5,
			MinFundamentalCoverage: 0.3,
			MinFactorCoverage:      0.3,
		},
		Schedule: Schedule{
			KR: "0 0 18 * * 1-5", // 평일 18:00 KST
			US: "0 0 9 * * 2-6",  // 화~토 09:00 KST (미국 장 마감 후)
		},
	}
}

// Maturity returns the configured risk-free maturity
func (c *Config) Maturity() contracts.Maturity {
	return contracts.Maturity(c.RiskFreeMaturity)
}
