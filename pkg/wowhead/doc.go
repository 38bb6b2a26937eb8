// Package wowhead scrapes "Attained by N% of profiles" rarity figures from
// Wowhead item, mount, battle pet and title pages.
//
// Scrape is best effort. Failed page loads are retried a fixed number of
// times with a constant delay and then reported as unknown (nil).
package wowhead
