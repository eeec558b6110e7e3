package artifact

import (
	"bytes"
	"strings"
	"time"
)

// maxLineLength is the manifest line limit in bytes, excluding the line break.
const maxLineLength = 72

// Attribute is one manifest header.
type Attribute struct {
	Name  string
	Value string
}

// Manifest is a jar manifest main section. Attributes keep insertion order.
type Manifest struct {
	attrs []Attribute
}

// ManifestInfo describes the values written to the main section.
type ManifestInfo struct {
	ModID     string
	Vendor    string
	Version   string
	Timestamp time.Time

	// MixinConfigs lists mixin config files. Defaults to "mixins.<modId>.client.json".
	MixinConfigs []string
}

// TimestampLayout is the Implementation-Timestamp format.
const TimestampLayout = "2006-01-02T15:04:05Z0700"

// NewManifest builds the main section for a release.
func NewManifest(info ManifestInfo) *Manifest {
	mixins := info.MixinConfigs
	if len(mixins) == 0 {
		mixins = []string{"mixins." + info.ModID + ".client.json"}
	}

	m := &Manifest{}
	m.Set("Manifest-Version", "1.0")
	m.Set("MixinConfigs", strings.Join(mixins, ","))
	m.Set("Specification-Title", info.ModID)
	m.Set("Specification-Vendor", info.Vendor)
	m.Set("Specification-Version", info.Version)
	m.Set("Implementation-Title", info.ModID)
	m.Set("Implementation-Vendor", info.Vendor)
	m.Set("Implementation-Version", info.Version)
	m.Set("Implementation-Timestamp", info.Timestamp.UTC().Format(TimestampLayout))
	return m
}

// Set adds or replaces an attribute.
func (m *Manifest) Set(name, value string) {
	for i := range m.attrs {
		if m.attrs[i].Name == name {
			m.attrs[i].Value = value
			return
		}
	}
	m.attrs = append(m.attrs, Attribute{Name: name, Value: value})
}

// Get returns the value of an attribute.
func (m *Manifest) Get(name string) (string, bool) {
	for _, a := range m.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attributes returns a copy of the attributes in order.
func (m *Manifest) Attributes() []Attribute {
	out := make([]Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Bytes encodes the manifest with CRLF line endings. Lines longer than 72
// bytes continue on the next line after a single space.
func (m *Manifest) Bytes() []byte {
	var buf bytes.Buffer
	for _, a := range m.attrs {
		writeWrapped(&buf, a.Name+": "+a.Value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeWrapped(buf *bytes.Buffer, line string) {
	limit := maxLineLength
	for len(line) > limit {
		cut := limit
		// never split a UTF-8 sequence
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		// no sequence start within the limit, split it anyway
		if cut == 0 {
			cut = limit
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineLength - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}
