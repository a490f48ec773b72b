// Package kind defines the closed set of conversions batchconv performs.
//
// Each Kind maps to a static (name, source extension, target extension,
// label) tuple. The zero value is Unknown and means "no kind selected".
package kind

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind selects a conversion.
type Kind int

const (
	Unknown   Kind = iota
	HeicToJpg      // HEIC still image -> JPEG.
	Mp4ToMp3       // MP4 video -> MP3 audio via the transcoder.
)

type info struct {
	name      string
	sourceExt string
	targetExt string
	label     string
}

var table = map[Kind]info{
	HeicToJpg: {name: "heic-jpg", sourceExt: ".heic", targetExt: ".jpg", label: "HEIC -> JPG"},
	Mp4ToMp3:  {name: "mp4-mp3", sourceExt: ".mp4", targetExt: ".mp3", label: "MP4 -> MP3"},
}

// All returns every valid kind in declaration order.
func All() []Kind {
	return []Kind{HeicToJpg, Mp4ToMp3}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := table[k]
	return ok
}

// String returns the flag/config name ("heic-jpg", "mp4-mp3").
func (k Kind) String() string {
	if i, ok := table[k]; ok {
		return i.name
	}
	return "unknown"
}

// SourceExt returns the lowercase source extension including the dot.
func (k Kind) SourceExt() string { return table[k].sourceExt }

// TargetExt returns the lowercase target extension including the dot.
func (k Kind) TargetExt() string { return table[k].targetExt }

// Label returns the human-readable label, e.g. "HEIC -> JPG".
func (k Kind) Label() string {
	if i, ok := table[k]; ok {
		return i.label
	}
	return "unknown"
}

// Matches reports whether name carries k's source extension,
// compared case-insensitively.
func (k Kind) Matches(name string) bool {
	if !k.Valid() {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), k.SourceExt())
}

// Parse resolves a kind from its name, its label, or the bare source format
// ("heic", ".mp4"). Matching is case-insensitive and ignores surrounding space.
func Parse(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return Unknown, fmt.Errorf("no conversion kind selected (use %s)", names())
	}
	for _, k := range All() {
		i := table[k]
		switch norm {
		case i.name, strings.ToLower(i.label), i.sourceExt, strings.TrimPrefix(i.sourceExt, "."):
			return k, nil
		}
	}
	// Tolerate "heic2jpg", "heic_jpg", "heic->jpg" and friends.
	squashed := strings.NewReplacer("_", "", "-", "", ">", "", "2", "", " ", "").Replace(norm)
	for _, k := range All() {
		if squashed == strings.ReplaceAll(table[k].name, "-", "") {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("invalid conversion kind %q (use %s)", s, names())
}

func names() string {
	parts := make([]string, 0, len(table))
	for _, k := range All() {
		parts = append(parts, "'"+k.String()+"'")
	}
	return strings.Join(parts, " or ")
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
