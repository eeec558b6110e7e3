package curseforge

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	oerrors "github.com/karmakrafts/modship/internal/errors"
)

// Category groups game version names by the version type they belong to.
type Category struct {
	// TypePrefix matches version type slugs, e.g. "minecraft" matches
	// "minecraft-1-20".
	TypePrefix string
	Names      []string
}

// VersionType is an entry of /api/game/version-types.
type VersionType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// GameVersion is an entry of /api/game/versions.
type GameVersion struct {
	ID     int    `json:"id"`
	TypeID int    `json:"gameVersionTypeID"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

// resolveGameVersions maps every requested name to its numeric id. Names
// that match nothing are reported together.
func (p *Publisher) resolveGameVersions(ctx context.Context, categories []Category) ([]int, error) {
	var types []VersionType
	if err := p.client.DoJSON(ctx, http.MethodGet, p.url("/api/game/version-types"), nil, "", &types); err != nil {
		return nil, fmt.Errorf("listing version types: %w", err)
	}
	var versions []GameVersion
	if err := p.client.DoJSON(ctx, http.MethodGet, p.url("/api/game/versions"), nil, "", &versions); err != nil {
		return nil, fmt.Errorf("listing game versions: %w", err)
	}

	typeSlug := make(map[int]string, len(types))
	for _, t := range types {
		typeSlug[t.ID] = t.Slug
	}

	var ids []int
	var missing []string
	for _, c := range categories {
		index := make(map[string]int)
		for _, v := range versions {
			if slug := typeSlug[v.TypeID]; slug == c.TypePrefix || strings.HasPrefix(slug, c.TypePrefix+"-") {
				index[strings.ToLower(v.Name)] = v.ID
			}
		}
		for _, name := range c.Names {
			id, ok := index[strings.ToLower(name)]
			if !ok {
				missing = append(missing, name)
				continue
			}
			ids = append(ids, id)
		}
	}

	if len(missing) > 0 {
		return nil, oerrors.NewChannelError(ChannelName, oerrors.ErrUploadRejected,
			fmt.Errorf("unknown game versions: %s", strings.Join(missing, ", ")))
	}
	return ids, nil
}
