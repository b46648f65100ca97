package analytics

import (
	"sort"

	"github.com/samber/lo"
)

// FilterSubgroup returns the records of one subgroup.
func FilterSubgroup(records []PeriodRecord, subgroup string) ([]PeriodRecord, error) {
	out := lo.Filter(records, func(r PeriodRecord, _ int) bool {
		return r.Subgroup == subgroup
	})
	if len(out) == 0 {
		return nil, &NoDataError{Subgroup: subgroup}
	}
	return out, nil
}

// Subgroups lists the distinct subgroups that have at least one analytical
// record, sorted.
func Subgroups(records []PeriodRecord) []string {
	labels := lo.Uniq(lo.FilterMap(records, func(r PeriodRecord, _ int) (string, bool) {
		return r.Subgroup, r.Subgroup != "" && r.Analytical()
	}))
	sort.Strings(labels)
	return labels
}

// DefaultSubgroup picks preferred when offered, otherwise the first option.
func DefaultSubgroup(options []string, preferred string) string {
	if lo.Contains(options, preferred) {
		return preferred
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
