package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Tier is a coarse risk classification, ordered STABLE < CAUTION < WARNING
// ⭐ SSOT: 배지 등급/방향/차원 정의는 여기서만
type Tier uint8

const (
	TierStable Tier = iota
	TierCaution
	TierWarning
)

func (t Tier) String() string {
	switch t {
	case TierStable:
		return "STABLE"
	case TierCaution:
		return "CAUTION"
	case TierWarning:
		return "WARNING"
	}
	return fmt.Sprintf("Tier(%d)", uint8(t))
}

// ParseTier parses the persisted tier name
func ParseTier(s string) (Tier, error) {
	switch s {
	case "STABLE":
		return TierStable, nil
	case "CAUTION":
		return TierCaution, nil
	case "WARNING":
		return TierWarning, nil
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Direction qualifies a dimension result. The zero value means "absent".
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionOverheated
	DirectionOversold
	DirectionUptrend
	DirectionDowntrend
	DirectionNeutral
)

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return ""
	case DirectionOverheated:
		return "OVERHEATED"
	case DirectionOversold:
		return "OVERSOLD"
	case DirectionUptrend:
		return "UPTREND"
	case DirectionDowntrend:
		return "DOWNTREND"
	case DirectionNeutral:
		return "NEUTRAL"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection parses a direction name; "" maps to DirectionNone
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "":
		return DirectionNone, nil
	case "OVERHEATED":
		return DirectionOverheated, nil
	case "OVERSOLD":
		return DirectionOversold, nil
	case "UPTREND":
		return DirectionUptrend, nil
	case "DOWNTREND":
		return DirectionDowntrend, nil
	case "NEUTRAL":
		return DirectionNeutral, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalJSON encodes an absent direction as null
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirectionNone {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null or a direction name
func (d *Direction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DirectionNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Dimension is one of the five independent risk axes
type Dimension uint8

const (
	DimensionPriceHeat Dimension = iota
	DimensionVolatility
	DimensionTrend
	DimensionCompanyHealth
	DimensionValuation
)

// AllDimensions lists the dimensions in badge order
var AllDimensions = [5]Dimension{
	DimensionPriceHeat,
	DimensionVolatility,
	DimensionTrend,
	DimensionCompanyHealth,
	DimensionValuation,
}

func (d Dimension) String() string {
	switch d {
	case DimensionPriceHeat:
		return "price_heat"
	case DimensionVolatility:
		return "volatility"
	case DimensionTrend:
		return "trend"
	case DimensionCompanyHealth:
		return "company_health"
	case DimensionValuation:
		return "valuation"
	}
	return fmt.Sprintf("Dimension(%d)", uint8(d))
}

// IsCritical reports whether a WARNING on this dimension always propagates to the summary.
// Fundamental dimensions are critical, price-derived ones are signals.
func (d Dimension) IsCritical() bool {
	return d == DimensionCompanyHealth || d == DimensionValuation
}

// ParseDimension parses a persisted dimension name
func ParseDimension(s string) (Dimension, error) {
	for _, d := range AllDimensions {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Dimension) UnmarshalText(b []byte) error {
	v, err := ParseDimension(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DimensionResult is the scored outcome of one dimension.
// Produced fresh per evaluation, never mutated afterwards.
type DimensionResult struct {
	Name          Dimension           `json:"name"`
	Score         float64             `json:"score"`
	Tier          Tier                `json:"tier"`
	Direction     Direction           `json:"direction"`
	Components    map[string]*float64 `json:"components"`
	DataAvailable bool                `json:"data_available"`
}

// BadgeRecord is the persistable risk badge of one stock
// 종목당 최신 1건만 유지 (stock_id 기준 upsert)
type BadgeRecord struct {
	StockID     int64             `json:"stock_id"`
	Market      Market            `json:"market"`
	Date        time.Time         `json:"date"`
	SummaryTier Tier              `json:"summary_tier"`
	Dimensions  []DimensionResult `json:"dimensions"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}

// Dimension returns the result for a given axis
func (b *BadgeRecord) Dimension(d Dimension) (DimensionResult, bool) {
	for _, r := range b.Dimensions {
		if r.Name == d {
			return r, true
		}
	}
	return DimensionResult{}, false
}

// Validate rejects records that cannot be persisted: every score and component must be finite
func (b *BadgeRecord) Validate() error {
	for _, d := range b.Dimensions {
		if math.IsNaN(d.Score) || math.IsInf(d.Score, 0) {
			return fmt.Errorf("%w: badge for stock %d has non-finite %s score", ErrInvalidRow, b.StockID, d.Name)
		}
		for name, v := range d.Components {
			if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				return fmt.Errorf("%w: badge for stock %d has non-finite %s.%s", ErrInvalidRow, b.StockID, d.Name, name)
			}
		}
	}
	return nil
}
