// Package storage writes rendered profiles to disk.
//
// Writes go to a temporary file in the destination directory which is then
// renamed over the target, so a reader (a site build, a git commit hook)
// sees either the old profile or the new one. The special path "-" sends
// the profile to standard output instead.
//
// Usage:
//
//	w := storage.NewWriter(os.Stdout)
//	res, err := w.Write("src/data/wowProfile.ts", rendered)
//	if err != nil {
//	    return err
//	}
//	if res.Unchanged {
//	    fmt.Println("profile already up to date")
//	}
package storage
