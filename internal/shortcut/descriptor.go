package shortcut

import (
	"bytes"
	"strings"
)

const (
	// Section is the header of the shortcut key block
	Section = "InternetShortcut"

	// Ext is the descriptor file extension
	Ext = ".url"

	keyURL       = "URL"
	keyIconFile  = "IconFile"
	keyIconIndex = "IconIndex"

	lineEnding = "\r\n"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Descriptor is a parsed .url file. Unknown sections and keys are kept
// verbatim so rewriting only touches the icon keys.
type Descriptor struct {
	Path  string
	lines []line
}

type line struct {
	section string // section the line belongs to, "" before any header
	key     string // empty for headers, comments and blanks
	value   string
	raw     string
}

// Parse reads descriptor text. It never fails; malformed lines are kept raw.
func Parse(path string, data []byte) *Descriptor {
	data = bytes.TrimPrefix(data, utf8BOM)
	d := &Descriptor{Path: path}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return d
	}

	section := ""
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(raw)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = trimmed[1 : len(trimmed)-1]
			d.lines = append(d.lines, line{section: section, raw: raw})
			continue
		}

		l := line{section: section, raw: raw}
		if k, v, ok := strings.Cut(raw, "="); ok && !strings.HasPrefix(trimmed, ";") {
			l.key = strings.TrimSpace(k)
			l.value = strings.TrimSpace(v)
		}
		d.lines = append(d.lines, l)
	}
	return d
}

// Get returns a key of the InternetShortcut section
func (d *Descriptor) Get(key string) (string, bool) {
	for _, l := range d.lines {
		if strings.EqualFold(l.section, Section) && strings.EqualFold(l.key, key) {
			return l.value, true
		}
	}
	return "", false
}

// Set assigns a key of the InternetShortcut section, adding the section or
// key when missing
func (d *Descriptor) Set(key, value string) {
	for i, l := range d.lines {
		if strings.EqualFold(l.section, Section) && strings.EqualFold(l.key, key) {
			d.lines[i].value = value
			d.lines[i].raw = l.key + "=" + value
			return
		}
	}

	// After the last non-blank line of the section
	insert := -1
	for i, l := range d.lines {
		if strings.EqualFold(l.section, Section) && strings.TrimSpace(l.raw) != "" {
			insert = i + 1
		}
	}

	entry := line{section: Section, key: key, value: value, raw: key + "=" + value}
	if insert < 0 {
		d.lines = append(d.lines, line{section: Section, raw: "[" + Section + "]"}, entry)
		return
	}
	d.lines = append(d.lines[:insert], append([]line{entry}, d.lines[insert:]...)...)
}

// URL returns the launch URL
func (d *Descriptor) URL() string {
	v, _ := d.Get(keyURL)
	return v
}

// IconFile returns the referenced icon path
func (d *Descriptor) IconFile() string {
	v, _ := d.Get(keyIconFile)
	return v
}

// IconIndex returns the raw icon index value
func (d *Descriptor) IconIndex() string {
	v, _ := d.Get(keyIconIndex)
	return v
}

// Bytes renders the descriptor with CRLF line endings
func (d *Descriptor) Bytes() []byte {
	var b strings.Builder
	for _, l := range d.lines {
		b.WriteString(l.raw)
		b.WriteString(lineEnding)
	}
	return []byte(b.String())
}

// New builds a minimal descriptor for a launch URL and icon
func New(path, url, iconFile string) *Descriptor {
	d := &Descriptor{Path: path}
	d.lines = []line{{section: Section, raw: "[" + Section + "]"}}
	d.Set(keyURL, url)
	d.Set(keyIconFile, iconFile)
	d.Set(keyIconIndex, "0")
	return d
}
