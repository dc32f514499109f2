package parser

import (
	"github.com/masahif/seodash/internal/provider"
)

// SERP item types
const (
	itemOrganic         = "organic"
	itemFeaturedSnippet = "featured_snippet"
	itemLocalPack       = "local_pack"
)

// DomainPosition is where one domain appears in a result set
type DomainPosition struct {
	Position          *int
	URL               string
	LocalPackPosition *int
}

// SerpRanking is the normalized outcome of one SERP task
type SerpRanking struct {
	Position          *int
	URL               string
	LocalPackPosition *int
	FeaturedSnippet   bool
	// Competitors holds only the competitor domains found in the result,
	// keyed by the domain as given to ParseSerp.
	Competitors map[string]DomainPosition
}

// ParseSerp extracts our ranking and the competitors' rankings from a task.
// ok is false when the task carries no result.
func ParseSerp(task provider.SerpTask, ourDomain string, competitorDomains []string) (ranking SerpRanking, ok bool) {
	if len(task.Result) == 0 {
		return SerpRanking{}, false
	}
	items := task.Result[0].Items
	localPack := localPackEntries(items)

	ours := findDomain(items, localPack, ourDomain)
	ranking = SerpRanking{
		Position:          ours.Position,
		URL:               ours.URL,
		LocalPackPosition: ours.LocalPackPosition,
		Competitors:       make(map[string]DomainPosition),
	}
	if ours.item != nil {
		ranking.FeaturedSnippet = ours.item.IsFeaturedSnippet || ours.item.Type == itemFeaturedSnippet
	}

	for _, domain := range competitorDomains {
		if domain == "" {
			continue
		}
		if _, seen := ranking.Competitors[domain]; seen {
			continue
		}
		found := findDomain(items, localPack, domain)
		if found.Position == nil && found.LocalPackPosition == nil {
			continue
		}
		ranking.Competitors[domain] = found.DomainPosition
	}

	return ranking, true
}

type localEntry struct {
	domain string
	url    string
	rank   int
}

type domainMatch struct {
	DomainPosition
	item *provider.SerpItem
}

func findDomain(items []provider.SerpItem, localPack []localEntry, domain string) domainMatch {
	var m domainMatch

	for i := range items {
		item := &items[i]
		if !isOrganic(item.Type) || item.URL == "" {
			continue
		}
		if MatchesDomain(item.URL, domain) {
			pos := item.RankAbsolute
			m.Position = &pos
			m.URL = item.URL
			m.item = item
			break
		}
	}

	for _, entry := range localPack {
		candidate := entry.domain
		if candidate == "" {
			candidate = entry.url
		}
		if candidate != "" && MatchesDomain(candidate, domain) {
			rank := entry.rank
			m.LocalPackPosition = &rank
			break
		}
	}

	return m
}

func isOrganic(itemType string) bool {
	return itemType == itemOrganic || itemType == itemFeaturedSnippet || itemType == ""
}

// localPackEntries flattens the local pack. Providers either nest the
// entries under one local_pack block or list each entry as its own
// local_pack item, so both shapes are accepted.
func localPackEntries(items []provider.SerpItem) []localEntry {
	var entries []localEntry
	for _, item := range items {
		if item.Type != itemLocalPack {
			continue
		}

		if len(item.Items) == 0 {
			entries = append(entries, localEntry{
				domain: item.Domain,
				url:    item.URL,
				rank:   firstPositive(item.RankInGroup, item.RankGroup, len(entries)+1),
			})
			continue
		}

		for i, sub := range item.Items {
			entries = append(entries, localEntry{
				domain: sub.Domain,
				url:    sub.URL,
				rank:   firstPositive(sub.RankInGroup, sub.RankGroup, i+1),
			})
		}
	}
	return entries
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
