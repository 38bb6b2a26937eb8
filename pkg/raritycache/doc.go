// Package raritycache stores scraped rarity percentages between runs.
//
// Rarity barely moves from one day to the next, so repeated runs can skip
// most Wowhead page loads. Entries are keyed by kind and id and expire
// after a configurable TTL. A definite "no rarity on this page" result is
// stored as a NULL value and is returned as a cache hit with a nil rarity.
//
// The cache lives in a single SQLite file, by default under the user's
// config directory:
//   - Linux: ~/.config/wowprofile/rarity.db
//   - macOS: ~/Library/Application Support/wowprofile/rarity.db
//   - Windows: %AppData%/wowprofile/rarity.db
package raritycache
