// File path: internal/decoder/summary.go
package decoder

// Summary aggregates the outcome of one decode run for reporting.
type Summary struct {
	Records       int            `json:"records"`
	Fields        int            `json:"fields"`
	OutOfRange    int            `json:"out_of_range_values"`
	ConditionHits map[string]int `json:"condition_hits,omitempty"`
}

// Summarize folds decoded records into run statistics: total records,
// scalar field count, values flagged out of declared range (counters
// outside their bounds and occurrences past the decoded count), and
// how often each condition name held.
func Summarize(records []Record) Summary {
	sum := Summary{Records: len(records)}
	var walk func(vs []*Value)
	walk = func(vs []*Value) {
		for _, v := range vs {
			if v.OutOfRange {
				sum.OutOfRange++
			}
			switch v.Kind {
			case KindGroup:
				walk(v.Children)
			case KindList:
				walk(v.Items)
			default:
				sum.Fields++
			}
		}
	}
	for _, rec := range records {
		walk(rec.Fields)
		for _, c := range rec.Conditions {
			if c.Set {
				if sum.ConditionHits == nil {
					sum.ConditionHits = make(map[string]int)
				}
				sum.ConditionHits[c.Name]++
			}
		}
	}
	return sum
}
