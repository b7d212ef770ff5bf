package craigslist

import (
	"fmt"
	"net/url"
)

// zipRegionMap maps zipcode prefixes to major Craigslist regions. A proper
// implementation would use a geo API to find the closest region; this covers
// the big metros and defaults to sfbay.
var zipRegionMap = map[string]string{
	"90": "losangeles",
	"91": "losangeles",
	"92": "orangecounty",
	"93": "ventura",
	"94": "sfbay",
	"95": "sfbay",
	"96": "sacramento",
	"97": "portland",
	"98": "seattle",
	"99": "spokane",
	"10": "newyork",
	"11": "newyork",
	"12": "albany",
	"60": "chicago",
	"75": "dallas",
	"77": "houston",
}

const defaultRegion = "sfbay"

// RegionForZip returns the Craigslist region serving the given zipcode.
func RegionForZip(zipcode string) string {
	if len(zipcode) < 2 {
		return defaultRegion
	}
	if region, ok := zipRegionMap[zipcode[:2]]; ok {
		return region
	}
	return defaultRegion
}

// BaseURL returns the root URL of a region's Craigslist site.
func BaseURL(region string) string {
	return fmt.Sprintf("https://%s.craigslist.org", region)
}

// SearchURL builds the for-sale search URL for a query within distance miles
// of the zipcode.
func SearchURL(region, query, zipcode string, distance int) string {
	return fmt.Sprintf("%s/search/sss?query=%s&postal=%s&search_distance=%d",
		BaseURL(region), url.QueryEscape(query), url.QueryEscape(zipcode), distance)
}
