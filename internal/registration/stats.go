package registration

import "strings"

// UnknownBucket is the bucket used for registrations with a blank year or branch.
const UnknownBucket = "Unknown"

// Stats summarizes registrations by branch and year.
type Stats struct {
	Total    int            `json:"total"`
	Branches map[string]int `json:"branches"`
	Years    map[string]int `json:"years"`
}

// ComputeStats counts records per branch and per year.
func ComputeStats(records []Record) Stats {
	stats := Stats{
		Total:    len(records),
		Branches: make(map[string]int),
		Years:    make(map[string]int),
	}
	for _, r := range records {
		stats.Branches[bucket(r.Branch)]++
		stats.Years[bucket(r.Year)]++
	}
	return stats
}

func bucket(v string) string {
	if strings.TrimSpace(v) == "" {
		return UnknownBucket
	}
	return v
}
