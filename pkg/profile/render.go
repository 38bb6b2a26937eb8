package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"wowprofile/pkg/models"
)

// Output formats accepted by Render.
const (
	FormatTypeScript = "ts"
	FormatJSON       = "json"
	FormatYAML       = "yaml"
)

var (
	escaper = strings.NewReplacer(
		"'", `\'`,
		"$", `\$`,
		"(", `\(`,
		")", `\)`,
		"!", `\!`,
	)

	renderURLPattern = regexp.MustCompile(`"https://render\.worldofwarcraft\.com/us/([^"]*)"`)
	creaturePattern  = regexp.MustCompile("\\$\\{A\\}npcs/zoom/creature-display-([^`]*)")
	iconPattern      = regexp.MustCompile("\\$\\{A\\}icons/56/([^`]*)")
)

// Render encodes p in the named format.
func Render(p models.Profile, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatTypeScript:
		return RenderTypeScript(p)
	case FormatJSON:
		return RenderJSON(p)
	case FormatYAML, "yml":
		return RenderYAML(p)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// RenderTypeScript produces a TypeScript module exporting the profile as
// wowProfile, with its interfaces. The JSON literal is flattened into a
// shape that survives being embedded in a template string: backslashes
// are dropped, quote and template characters escaped, non-ASCII removed,
// and render URLs shortened to the A, B and C prefix constants.
func RenderTypeScript(p models.Profile) ([]byte, error) {
	raw, err := compactJSON(p)
	if err != nil {
		return nil, err
	}

	s := strings.ReplaceAll(string(dropNonASCIIEscapes(raw)), `\`, "")
	s = escaper.Replace(s)
	s = stripNonASCII(s)
	s = renderURLPattern.ReplaceAllString(s, "`$${A}${1}`")
	s = creaturePattern.ReplaceAllString(s, "$${B}${1}")
	s = iconPattern.ReplaceAllString(s, "$${C}${1}")

	var buf bytes.Buffer
	buf.WriteString(typeScriptPreamble)
	buf.WriteString("export const wowProfile: WoWProfile = ")
	buf.WriteString(s)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// RenderJSON produces indented JSON.
func RenderJSON(p models.Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return buf.Bytes(), nil
}

func RenderYAML(p models.Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return buf.Bytes(), nil
}

func compactJSON(p models.Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// dropNonASCIIEscapes removes the \uXXXX escapes the encoder writes for
// U+2028, U+2029 and invalid UTF-8, so those runes go the same way as
// every other non-ASCII rune instead of leaving their hex digits behind.
func dropNonASCIIEscapes(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		if raw[i+1] == 'u' && i+6 <= len(raw) {
			if code, err := strconv.ParseUint(string(raw[i+2:i+6]), 16, 16); err == nil && code > 0x7F {
				i += 5
				continue
			}
		}
		out = append(out, raw[i], raw[i+1])
		i++
	}
	return out
}

func stripNonASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7F {
			return -1
		}
		return r
	}, s)
}

const typeScriptPreamble = `const A = 'https://render.worldofwarcraft.com/us/'
const B = ` + "`${A}npcs/zoom/creature-display-`" + `
const C = ` + "`${A}icons/56/`" + `

export interface Toy {
  name: string;
  source?: string;
  id: number;
  icon: string;
  rarity: number | null;
}

export interface Titles {
  active: {
    name: string;
    display_string: string;
  };
  titles: {
    id: number;
    name: string;
    rarity: number | null;
  }[];
}

export interface Pet {
  name: string;
  description: string;
  id: number;
  source?: string;
  icon: string;
  type: string;
  rarity: number | null;
}

export interface Mount {
  rarity: number | null;
  icon: string;
  name: string;
  description: string;
  id: number;
  source?: string;
}

export interface Character {
  avatar: string;
  inset: string;
  main: string;
  name: string;
  realm: string;
}

export interface Rating {
  color: {
    r: number;
    g: number;
    b: number;
    a: number;
  };
  rating: number;
}

export interface MythicSeason {
  id: number;
  io: Rating;
  best_runs: {
    completed_timestamp: number;
    dungeon_name: string;
    duration: number;
    is_completed_within_time: boolean;
    affixes: string[];
    level: number;
    rating: Rating;
  }[];
}

export interface WoWProfile {
  titles: Titles;
  mounts: Mount[];
  pets: Pet[];
  toys: Toy[];
  character: Character;
  mythicPlus: MythicSeason[];
}

`
