package aggregate

// ChartKind is the default visualization for a metric.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartLine      ChartKind = "line"
	ChartPie       ChartKind = "pie"
	ChartHistogram ChartKind = "histogram"
)

// ParseChartKind validates a user-supplied chart kind.
func ParseChartKind(s string) (ChartKind, bool) {
	switch k := ChartKind(s); k {
	case ChartBar, ChartLine, ChartPie, ChartHistogram:
		return k, true
	default:
		return "", false
	}
}

// RecommendChartKind picks a chart for a metric. It follows the series
// strategy so the default chart always suits the buckets it draws.
func RecommendChartKind(id string) ChartKind {
	switch StrategyFor(id) {
	case StrategyCategorical:
		return ChartPie
	case StrategyTimeSeries:
		return ChartLine
	case StrategyHistogram:
		return ChartHistogram
	default:
		return ChartBar
	}
}
