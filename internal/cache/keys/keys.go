package keys

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/incident-explorer/internal/filter"
)

// bump when the encoded result shape changes
const version = "v1"

// Key returns a cache key for p at the given cell resolution. Set-valued
// dimensions are sorted and de-duplicated first, so selection order does not
// matter. The key stays short: the canonical form is hashed with xxhash.
func Key(p filter.Params, cellRes int) string {
	canon := Canonical(p, cellRes)
	return fmt.Sprintf("incidents:%s:y=%d:f=%016x", version, p.TargetYear, xxhash.Sum64String(canon))
}

// Canonical renders p in a stable textual form.
func Canonical(p filter.Params, cellRes int) string {
	districts := append([]string(nil), p.Districts...)
	slices.Sort(districts)
	districts = slices.Compact(districts)

	days := make([]int, 0, len(p.Weekdays))
	for _, d := range p.Weekdays {
		days = append(days, int(d))
	}
	ages := make([]int, 0, len(p.AgeCategories))
	for _, a := range p.AgeCategories {
		ages = append(ages, int(a))
	}

	var b strings.Builder
	b.WriteString("y=")
	b.WriteString(strconv.Itoa(p.TargetYear))
	b.WriteString("|h=")
	b.WriteString(strconv.Itoa(p.HourLow))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(p.HourHigh))
	b.WriteString("|w=")
	b.WriteString(joinInts(days))
	b.WriteString("|a=")
	b.WriteString(joinInts(ages))
	b.WriteString("|r=")
	b.WriteString(strconv.Itoa(cellRes))
	b.WriteString("|d=")
	for i, d := range districts {
		if i > 0 {
			b.WriteByte(',')
		}
		// length prefix keeps "a,b" and "a" + "b" apart
		b.WriteString(strconv.Itoa(len(d)))
		b.WriteByte(':')
		b.WriteString(d)
	}
	return b.String()
}

func joinInts(v []int) string {
	slices.Sort(v)
	v = slices.Compact(v)
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
