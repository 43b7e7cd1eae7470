package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	salaryNumber = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k\b)?`)
	salaryLakh   = regexp.MustCompile(`(lakh|lac)s?\b`)
)

// parseSalary reads the midpoint of a free-text salary such as
// "$120k - $150k" or "5-8 Lacs PA". Numbers without their own unit take
// the unit of the range. ok is false when no number is present.
func parseSalary(raw string) (float64, bool) {
	s := strings.ToLower(strings.ReplaceAll(raw, ",", ""))
	found := salaryNumber.FindAllStringSubmatch(s, -1)
	if len(found) == 0 {
		return 0, false
	}

	unit := 1.0
	switch {
	case salaryLakh.MatchString(s):
		unit = 100000
	default:
		for _, m := range found {
			if m[2] != "" {
				unit = 1000
				break
			}
		}
	}

	if len(found) > 2 {
		found = found[:2]
	}
	var sum float64
	for _, m := range found {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		if m[2] != "" {
			n *= 1000
		} else {
			n *= unit
		}
		sum += n
	}
	return sum / float64(len(found)), true
}

// salaryInRange applies the thousands-denominated bounds of the
// recommendation filter. A zero bound is open; unparseable salaries pass.
func salaryInRange(raw string, minK, maxK float64) bool {
	if minK <= 0 && maxK <= 0 {
		return true
	}
	value, ok := parseSalary(raw)
	if !ok {
		return true
	}
	if minK > 0 && value < minK*1000 {
		return false
	}
	if maxK > 0 && value > maxK*1000 {
		return false
	}
	return true
}
