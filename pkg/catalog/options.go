package catalog

// ControlType describes the input control a filter kind is entered with.
type ControlType string

const (
	ControlDateRange ControlType = "dateRange"
	ControlDate      ControlType = "date"
	ControlSelect    ControlType = "select"
	ControlNumber    ControlType = "number"
	ControlRange     ControlType = "range"
	ControlToggle    ControlType = "toggle"
)

// FilterOption describes how a filter kind is presented to a user.
type FilterOption struct {
	Control ControlType `json:"type"`
	Label   string      `json:"label,omitempty"`
	// Options is the fixed vocabulary for select controls.
	Options []string `json:"options,omitempty"`
}

var (
	challengeStatuses  = []string{"Completed", "In Progress", "Not Started", "Overdue"}
	completionStatuses = []string{"Completed", "Partial", "Not Started", "Abandoned"}
)

var filterOptions = map[FilterKind]FilterOption{
	FilterDateRange:        {Control: ControlDateRange, Label: "Start Date / End Date"},
	FilterDateRangeAlt:     {Control: ControlDateRange, Label: "Start Date / End Date"},
	FilterSpecificDate:     {Control: ControlDate, Label: "Select Date"},
	FilterStatus:           {Control: ControlSelect, Options: challengeStatuses},
	FilterStatusCount:      {Control: ControlSelect, Options: completionStatuses},
	FilterStatusPercentage: {Control: ControlSelect, Options: completionStatuses},
	FilterLessThan:         {Control: ControlNumber, Label: "Less than value"},
	FilterGreaterThan:      {Control: ControlNumber, Label: "Greater than value"},
	FilterRange:            {Control: ControlRange, Label: "Minimum value / Maximum value"},
	FilterCount:            {Control: ControlToggle, Label: "Include count"},
	FilterAverage:          {Control: ControlToggle, Label: "Calculate average"},
	FilterPercentage:       {Control: ControlToggle, Label: "Show as percentage"},
	FilterTimeValue:        {Control: ControlSelect, Options: []string{"Minutes", "Hours", "Days"}},
	FilterDistinctCount:    {Control: ControlToggle, Label: "Show distinct count"},
	FilterDistinctValue:    {Control: ControlToggle, Label: "Show distinct values"},
}

// OptionFor returns the input control for a filter kind.
func OptionFor(kind FilterKind) (FilterOption, bool) {
	opt, ok := filterOptions[kind]
	if !ok {
		return FilterOption{}, false
	}
	opt.Options = append([]string(nil), opt.Options...)
	return opt, true
}
