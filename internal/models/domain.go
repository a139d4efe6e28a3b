package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// DomainTag is one of the closed set of technology domains used to route submissions.
type DomainTag string

const (
	DomainAI         DomainTag = "AI"
	DomainWeb        DomainTag = "Web"
	DomainBlockchain DomainTag = "Blockchain"
	DomainCloud      DomainTag = "Cloud"
	DomainIoT        DomainTag = "IoT"
	DomainData       DomainTag = "Data"
	DomainGeneral    DomainTag = "General"
)

// AllDomains lists every tag in canonical (lexicographic) order.
var AllDomains = []DomainTag{
	DomainAI,
	DomainBlockchain,
	DomainCloud,
	DomainData,
	DomainGeneral,
	DomainIoT,
	DomainWeb,
}

var domainLookup = func() map[string]DomainTag {
	lookup := make(map[string]DomainTag, len(AllDomains))
	for _, tag := range AllDomains {
		lookup[strings.ToLower(string(tag))] = tag
	}
	return lookup
}()

// ParseDomainTag normalises a case-insensitive tag name into the closed set.
func ParseDomainTag(raw string) (DomainTag, bool) {
	tag, ok := domainLookup[strings.ToLower(strings.TrimSpace(raw))]
	return tag, ok
}

// Valid reports whether the tag belongs to the closed set.
func (d DomainTag) Valid() bool {
	tag, ok := domainLookup[strings.ToLower(string(d))]
	return ok && tag == d
}

// DomainList is an ordered, duplicate-free list of tags stored as a postgres text[].
type DomainList []DomainTag

// NewDomainList deduplicates and sorts the given tags into canonical order.
func NewDomainList(tags ...DomainTag) DomainList {
	seen := make(map[DomainTag]struct{}, len(tags))
	list := make(DomainList, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		list = append(list, tag)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// ParseDomainList converts raw names into a DomainList, rejecting unknown tags.
func ParseDomainList(raw []string) (DomainList, error) {
	tags := make([]DomainTag, 0, len(raw))
	for _, item := range raw {
		tag, ok := ParseDomainTag(item)
		if !ok {
			return nil, fmt.Errorf("unknown domain %q", item)
		}
		tags = append(tags, tag)
	}
	return NewDomainList(tags...), nil
}

// Contains reports whether the list holds tag.
func (l DomainList) Contains(tag DomainTag) bool {
	for _, item := range l {
		if item == tag {
			return true
		}
	}
	return false
}

// Strings returns the raw tag names.
func (l DomainList) Strings() []string {
	out := make([]string, len(l))
	for i, tag := range l {
		out[i] = string(tag)
	}
	return out
}

// Value implements driver.Valuer.
func (l DomainList) Value() (driver.Value, error) {
	return pq.Array(l.Strings()).Value()
}

// Scan implements sql.Scanner.
func (l *DomainList) Scan(src interface{}) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan domain list: %w", err)
	}
	list := make(DomainList, 0, len(raw))
	for _, item := range raw {
		list = append(list, DomainTag(item))
	}
	*l = list
	return nil
}
