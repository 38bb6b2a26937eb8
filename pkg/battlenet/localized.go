package battlenet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// LocalizedString is a name the API returns either as a plain string or,
// when no locale was requested, as a map of locale to string.
type LocalizedString struct {
	Plain   string
	Locales map[string]string
}

func (s *LocalizedString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = LocalizedString{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var plain string
		if err := json.Unmarshal(data, &plain); err != nil {
			return err
		}
		*s = LocalizedString{Plain: plain}
		return nil
	}

	var locales map[string]*string
	if err := json.Unmarshal(data, &locales); err != nil {
		return fmt.Errorf("localized string: expected string or locale map: %w", err)
	}
	s.Plain = ""
	s.Locales = make(map[string]string, len(locales))
	for k, v := range locales {
		if v != nil {
			s.Locales[k] = *v
		}
	}
	return nil
}

func (s LocalizedString) MarshalJSON() ([]byte, error) {
	if s.Locales != nil {
		return json.Marshal(s.Locales)
	}
	return json.Marshal(s.Plain)
}

// String resolves the value: the plain form if present, otherwise en_US,
// otherwise the first non-empty locale in sorted order.
func (s LocalizedString) String() string {
	if s.Locales == nil {
		return s.Plain
	}
	if v := s.Locales[DefaultLocale]; v != "" {
		return v
	}

	keys := make([]string, 0, len(s.Locales))
	for k := range s.Locales {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := s.Locales[k]; v != "" {
			return v
		}
	}
	return ""
}
