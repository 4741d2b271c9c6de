// Package catalog holds the fixed set of metrics a report can be built from,
// along with the filter kinds each one supports and how each is typed for
// export.
package catalog

// FilterKind is the display label of a filter a metric supports.
type FilterKind string

const (
	FilterCount            FilterKind = "Count"
	FilterDistinctCount    FilterKind = "Distinct Count"
	FilterDistinctValue    FilterKind = "Distinct Value"
	FilterDateRange        FilterKind = "Date range"
	FilterDateRangeAlt     FilterKind = "Date Range"
	FilterSpecificDate     FilterKind = "Specific date"
	FilterStatus           FilterKind = "Status"
	FilterStatusCount      FilterKind = "Status Count"
	FilterStatusPercentage FilterKind = "Status Percentage"
	FilterLessThan         FilterKind = "Less than"
	FilterGreaterThan      FilterKind = "Greater than"
	FilterRange            FilterKind = "Range"
	FilterAverage          FilterKind = "Average"
	FilterPercentage       FilterKind = "Percentage"
	FilterTimeValue        FilterKind = "Time value"
)

// DataType is the column type a metric exports as.
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeNumber DataType = "number"
	DataTypeDate   DataType = "date"
)

// Metric ids.
const (
	MasterOID         = "master_o_id"
	ContentLaunchDate = "content_launch_date"
	Challenges        = "challenges"
	CompletionStatus  = "completion_status"
	CompletionDate    = "completion_date"
	CompletedInDays   = "completed_in_days"
	Attempts          = "attempts"
	Score             = "score"
	MaxScore          = "max_score"
	TimeSpent         = "time_spent"
	MicroskillName    = "microskill_name"
	LoginStatus       = "login_status"
	LastLoginDate     = "last_login_date"
)

// Metric is a selectable report column. Metrics are defined once here and
// referenced by ID everywhere else.
type Metric struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	FilterKinds []FilterKind `json:"filters"`
}

var metrics = []Metric{
	{ID: MasterOID, Name: "Master-O ID", FilterKinds: []FilterKind{FilterCount, FilterDistinctCount, FilterDistinctValue}},
	{ID: ContentLaunchDate, Name: "Content launch date", FilterKinds: []FilterKind{FilterDateRange, FilterSpecificDate}},
	{ID: Challenges, Name: "Challenges", FilterKinds: []FilterKind{FilterStatus}},
	{ID: CompletionStatus, Name: "Completion Status", FilterKinds: []FilterKind{FilterStatusCount, FilterStatusPercentage, FilterLessThan, FilterGreaterThan, FilterRange}},
	{ID: CompletionDate, Name: "Completion Date", FilterKinds: []FilterKind{FilterDateRangeAlt, FilterSpecificDate}},
	{ID: CompletedInDays, Name: "Completed In Days", FilterKinds: []FilterKind{FilterCount, FilterLessThan, FilterGreaterThan}},
	{ID: Attempts, Name: "Attempts", FilterKinds: []FilterKind{FilterStatus}},
	{ID: Score, Name: "Score", FilterKinds: []FilterKind{FilterCount, FilterAverage, FilterPercentage}},
	{ID: MaxScore, Name: "Max Score", FilterKinds: []FilterKind{FilterCount}},
	{ID: TimeSpent, Name: "Time Spent", FilterKinds: []FilterKind{FilterTimeValue, FilterAverage}},
	{ID: MicroskillName, Name: "Microskill Name", FilterKinds: []FilterKind{FilterCount, FilterDistinctCount, FilterDistinctValue}},
	{ID: LoginStatus, Name: "Login Status", FilterKinds: []FilterKind{FilterStatus, FilterCount}},
	{ID: LastLoginDate, Name: "Last Login Date", FilterKinds: []FilterKind{FilterDateRangeAlt, FilterSpecificDate}},
}

var dataTypes = map[string]DataType{
	ContentLaunchDate: DataTypeDate,
	CompletionDate:    DataTypeDate,
	LastLoginDate:     DataTypeDate,
	CompletedInDays:   DataTypeNumber,
	Attempts:          DataTypeNumber,
	Score:             DataTypeNumber,
	MaxScore:          DataTypeNumber,
	TimeSpent:         DataTypeNumber,
}

// dimensions are the categorical metrics that get a lookup table in the
// Power BI template.
var dimensions = map[string]bool{
	Challenges:       true,
	CompletionStatus: true,
	MicroskillName:   true,
	LoginStatus:      true,
}

// ListMetrics returns the 13 catalog metrics in catalog order. The returned
// slice is a copy and may be modified by the caller.
func ListMetrics() []Metric {
	out := make([]Metric, len(metrics))
	for i, m := range metrics {
		out[i] = m
		out[i].FilterKinds = append([]FilterKind(nil), m.FilterKinds...)
	}
	return out
}

// Lookup returns the metric with the given ID.
func Lookup(id string) (Metric, bool) {
	for _, m := range metrics {
		if m.ID == id {
			m.FilterKinds = append([]FilterKind(nil), m.FilterKinds...)
			return m, true
		}
	}
	return Metric{}, false
}

// MustLookup is Lookup for IDs known at compile time. It panics on an
// unknown ID.
func MustLookup(id string) Metric {
	m, ok := Lookup(id)
	if !ok {
		panic("catalog: unknown metric " + id)
	}
	return m
}

// FilterKindsFor returns the filter kinds supported by a metric. Unknown
// IDs yield an empty slice.
func FilterKindsFor(id string) []FilterKind {
	m, ok := Lookup(id)
	if !ok {
		return []FilterKind{}
	}
	return m.FilterKinds
}

// DataTypeFor classifies a metric for typed exports. Anything that is not a
// known date or number metric is a string.
func DataTypeFor(id string) DataType {
	if t, ok := dataTypes[id]; ok {
		return t
	}
	return DataTypeString
}

// IsDimension reports whether a metric is categorical enough to warrant its
// own dimension table.
func IsDimension(id string) bool {
	return dimensions[id]
}

// IDs returns the IDs of the given metrics in order.
func IDs(ms []Metric) []string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	return ids
}
