// Package config loads wowprofile settings.
//
// Sources are applied in order, later ones winning:
//
//  1. DefaultConfig
//  2. a YAML file (--config, or the first of .wowprofile.yaml,
//     ~/.config/wowprofile/config.yaml, ~/.wowprofile.yaml)
//  3. WOWPROFILE_* environment variables, including values from .env
//  4. command line flags passed to MergeCommandLineFlags
//
// Load does not validate; call Validate once credentials have been
// resolved:
//
//	cfg, err := config.Load("", map[string]interface{}{
//	    "realm":     "area-52",
//	    "character": "thrall",
//	    "format":    "json",
//	})
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
