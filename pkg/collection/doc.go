// Package collection turns one character's Battle.net collections into
// the normalized profile entities.
//
// Each kind follows the same shape: fetch the collection summary, resolve
// every entry's detail (and icon media where the kind has one), attach a
// best-effort rarity, and project to the public model. Mounts, toys and
// titles fan out with a pacer and bounded concurrency while keeping
// summary order. Pets and Mythic+ seasons run sequentially.
package collection
