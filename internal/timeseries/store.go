package timeseries

// Sampling cadence of the latency backend
const CadenceSeconds = 15

// FullCapacity is seven days of samples at the sampling cadence
const FullCapacity = 7 * 24 * 60 * 60 / CadenceSeconds

// ChartRows maps chart range ids to the number of rows requested for them
var ChartRows = map[string]int{
	"5min":  20,
	"15min": 60,
	"3hr":   720,
	"12hr":  2880,
	"24hr":  5760,
	"3day":  17280,
	"7day":  40320,
}

// DefaultChartRows is used for unknown chart ranges
const DefaultChartRows = 20

// RowsFor returns the chart row count for a range id
func RowsFor(rangeID string) int {
	if rows, ok := ChartRows[rangeID]; ok {
		return rows
	}
	return DefaultChartRows
}

// Store owns the chart and full-retention series
type Store struct {
	Chart      *Series
	Full       *Series
	chartRange string
}

// NewStore creates a store with the chart series sized for chartRange
func NewStore(chartRange string) *Store {
	return &Store{
		Chart:      NewSeries(RowsFor(chartRange)),
		Full:       NewSeries(FullCapacity),
		chartRange: chartRange,
	}
}

// ChartRange returns the selected chart range id
func (s *Store) ChartRange() string {
	return s.chartRange
}

// SelectChartRange re-caps the chart series for a new range
func (s *Store) SelectChartRange(rangeID string) {
	s.chartRange = rangeID
	s.Chart.SetCapacity(RowsFor(rangeID))
}
