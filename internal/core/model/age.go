package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AgeCategory is a victim age bucket. Values are ordered youngest first.
type AgeCategory int

const (
	Newborns AgeCategory = iota + 1
	Children
	Youth
	Adults
	Seniors
)

var ageCategoryNames = [...]string{"", "Newborns", "Children", "Youth", "Adults", "Seniors"}

// upper bounds (inclusive) of every bucket except the last
var ageUpper = [...]struct {
	max int
	cat AgeCategory
}{
	{3, Newborns},
	{12, Children},
	{24, Youth},
	{64, Adults},
}

// BucketAge maps a non-negative age to its category. Each bound belongs to
// the lower bucket: 3 is Newborns, 12 Children, 24 Youth, 64 Adults.
// Negative ages are rejected at load time and are never bucketed.
func BucketAge(age int) AgeCategory {
	for _, b := range ageUpper {
		if age <= b.max {
			return b.cat
		}
	}
	return Seniors
}

// AgeCategories lists every category from youngest to oldest.
func AgeCategories() []AgeCategory {
	return []AgeCategory{Newborns, Children, Youth, Adults, Seniors}
}

// Valid reports whether c is one of the five named categories.
func (c AgeCategory) Valid() bool { return c >= Newborns && c <= Seniors }

func (c AgeCategory) String() string {
	if !c.Valid() {
		return fmt.Sprintf("AgeCategory(%d)", int(c))
	}
	return ageCategoryNames[c]
}

// ParseAgeCategory matches a category name case-insensitively.
func ParseAgeCategory(s string) (AgeCategory, error) {
	s = strings.TrimSpace(s)
	for c := Newborns; c <= Seniors; c++ {
		if strings.EqualFold(s, ageCategoryNames[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown age category %q", s)
}

func (c AgeCategory) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("marshal invalid age category %d", int(c))
	}
	return json.Marshal(c.String())
}

func (c *AgeCategory) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("age category must be a string: %w", err)
	}
	v, err := ParseAgeCategory(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
