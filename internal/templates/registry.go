package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Variable names of the closed set. Templates may reference nothing else.
const (
	VarModID                 = "mod_id"
	VarModName               = "mod_name"
	VarModLicense            = "mod_license"
	VarModVersion            = "mod_version"
	VarModAuthors            = "mod_authors"
	VarModDescription        = "mod_description"
	VarMinecraftVersion      = "minecraft_version"
	VarMinecraftVersionRange = "minecraft_version_range"
	VarForgeVersion          = "forge_version"
	VarForgeVersionRange     = "forge_version_range"
	VarLoaderVersionRange    = "loader_version_range"
)

// registry documents every variable of the closed set.
var registry = map[string]string{
	VarModID:                 "identity name of the mod",
	VarModName:               "display name",
	VarModLicense:            "license label",
	VarModVersion:            "resolved artifact version",
	VarModAuthors:            "author",
	VarModDescription:        "one-line description",
	VarMinecraftVersion:      "host platform version",
	VarMinecraftVersionRange: "host platform version range, [<version>]",
	VarForgeVersion:          "loader version",
	VarForgeVersionRange:     "loader version range, [<version>,)",
	VarLoaderVersionRange:    "loader major version",
}

// Names returns the sorted names of the closed variable set.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description of a variable and whether it is known.
func Describe(name string) (string, bool) {
	d, ok := registry[name]
	return d, ok
}

// Variables maps variable names to their values. It is built once per run
// and only read afterwards.
type Variables map[string]string

// Inputs are the values the variable set is derived from.
type Inputs struct {
	ModID            string
	ModName          string
	License          string
	Version          string
	Authors          string
	Description      string
	MinecraftVersion string
	ForgeVersion     string
}

// NewVariables derives the closed variable set from inputs.
func NewVariables(in Inputs) Variables {
	loaderMajor, _, _ := strings.Cut(in.ForgeVersion, ".")

	return Variables{
		VarModID:                 in.ModID,
		VarModName:               in.ModName,
		VarModLicense:            in.License,
		VarModVersion:            in.Version,
		VarModAuthors:            in.Authors,
		VarModDescription:        in.Description,
		VarMinecraftVersion:      in.MinecraftVersion,
		VarMinecraftVersionRange: "[" + in.MinecraftVersion + "]",
		VarForgeVersion:          in.ForgeVersion,
		VarForgeVersionRange:     "[" + in.ForgeVersion + ",)",
		VarLoaderVersionRange:    loaderMajor,
	}
}

// Lookup returns the value of a variable. Only names of the closed set
// resolve, even if the map was extended by hand.
func (v Variables) Lookup(name string) (string, bool) {
	if _, known := registry[name]; !known {
		return "", false
	}
	val, ok := v[name]
	return val, ok
}

// Validate checks that the set holds exactly the closed set of names.
func (v Variables) Validate() error {
	var problems []string
	for _, name := range Names() {
		if _, ok := v[name]; !ok {
			problems = append(problems, fmt.Sprintf("missing %s", name))
		}
	}
	for name := range v {
		if _, ok := registry[name]; !ok {
			problems = append(problems, fmt.Sprintf("unknown %s", name))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid variable set: %s", strings.Join(problems, ", "))
	}
	return nil
}
