package editor

import (
	"fmt"
	"sort"

	"github.com/memodb-io/sitestore/internal/modules/model"
)

// SelectStrategy picks the one asset of a given type that a load returns
// when a version holds several.
type SelectStrategy interface {
	Name() string
	Pick(t model.AssetType, candidates []*model.Asset) *model.Asset
}

// CanonicalFirstStrategy prefers the asset filed under the canonical
// filename and path of its type, then the earliest created, then the
// smallest id.
type CanonicalFirstStrategy struct{}

func (CanonicalFirstStrategy) Name() string { return "canonical_first" }

func (CanonicalFirstStrategy) Pick(t model.AssetType, candidates []*model.Asset) *model.Asset {
	return pick(candidates, func(a *model.Asset) bool { return isCanonical(t, a) })
}

// EarliestStrategy ignores paths and returns the earliest created asset.
type EarliestStrategy struct{}

func (EarliestStrategy) Name() string { return "earliest" }

func (EarliestStrategy) Pick(_ model.AssetType, candidates []*model.Asset) *model.Asset {
	return pick(candidates, func(*model.Asset) bool { return false })
}

func pick(candidates []*model.Asset, preferred func(*model.Asset) bool) *model.Asset {
	if len(candidates) == 0 {
		return nil
	}
	sorted := append([]*model.Asset(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := preferred(sorted[i]), preferred(sorted[j])
		if pi != pj {
			return pi
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted[0]
}

func isCanonical(t model.AssetType, a *model.Asset) bool {
	cfg := t.Config()
	if cfg.Filename == "" {
		return false
	}
	return a.FullPath() == cfg.Path+cfg.Filename
}

// SelectPerType groups assets by type and lets s pick one per editor type.
// Types with no asset are absent from the result.
func SelectPerType(s SelectStrategy, assets []*model.Asset) map[model.AssetType]*model.Asset {
	byType := make(map[model.AssetType][]*model.Asset)
	for _, a := range assets {
		byType[a.AssetType] = append(byType[a.AssetType], a)
	}
	out := make(map[model.AssetType]*model.Asset, len(model.EditorAssetTypes))
	for _, t := range model.EditorAssetTypes {
		if a := s.Pick(t, byType[t]); a != nil {
			out[t] = a
		}
	}
	return out
}

// GetSelectStrategy resolves a strategy by name; the empty name is the default.
func GetSelectStrategy(name string) (SelectStrategy, error) {
	switch name {
	case "", CanonicalFirstStrategy{}.Name():
		return CanonicalFirstStrategy{}, nil
	case EarliestStrategy{}.Name():
		return EarliestStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown select strategy %q", name)
	}
}
