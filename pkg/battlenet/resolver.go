package battlenet

import (
	"context"
	"fmt"

	"wowprofile/pkg/logger"
)

// Resolver follows collection summary links to full item details and
// their icon assets.
type Resolver struct {
	fetcher Fetcher
	logger  logger.Logger
}

// NewResolver creates a Resolver backed by fetcher.
func NewResolver(fetcher Fetcher, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{fetcher: fetcher, logger: log.WithField("component", "resolver")}
}

// ResolveMount fetches the mount detail and the icon of its first creature
// display. A mount without displays resolves with an empty icon.
func (r *Resolver) ResolveMount(ctx context.Context, ref MountRef) (MountDetail, string, error) {
	var detail MountDetail
	if err := r.fetcher.FetchURL(ctx, ref.Mount.Key.Href, &detail); err != nil {
		return MountDetail{}, "", fmt.Errorf("resolve mount %d: %w", ref.Mount.ID, err)
	}

	if len(detail.CreatureDisplays) == 0 || detail.CreatureDisplays[0].Key.Href == "" {
		r.missingIcon("mount", detail.ID, "no creature display")
		return detail, "", nil
	}

	icon, err := r.mediaIcon(ctx, detail.CreatureDisplays[0].Key.Href)
	if err != nil {
		return MountDetail{}, "", fmt.Errorf("resolve mount %d display: %w", detail.ID, err)
	}
	if icon == "" {
		r.missingIcon("mount", detail.ID, "display has no assets")
	}
	return detail, icon, nil
}

// ResolveToy fetches the toy detail and the icon from its media document.
func (r *Resolver) ResolveToy(ctx context.Context, ref ToyRef) (ToyDetail, string, error) {
	var detail ToyDetail
	if err := r.fetcher.FetchURL(ctx, ref.Toy.Key.Href, &detail); err != nil {
		return ToyDetail{}, "", fmt.Errorf("resolve toy %d: %w", ref.Toy.ID, err)
	}

	if detail.Media.Key.Href == "" {
		r.missingIcon("toy", detail.ID, "no media link")
		return detail, "", nil
	}

	icon, err := r.mediaIcon(ctx, detail.Media.Key.Href)
	if err != nil {
		return ToyDetail{}, "", fmt.Errorf("resolve toy %d media: %w", detail.ID, err)
	}
	if icon == "" {
		r.missingIcon("toy", detail.ID, "media has no assets")
	}
	return detail, icon, nil
}

// ResolvePet fetches the species detail. Its icon is inline.
func (r *Resolver) ResolvePet(ctx context.Context, ref PetRef) (PetDetail, error) {
	var detail PetDetail
	if err := r.fetcher.FetchURL(ctx, ref.Species.Key.Href, &detail); err != nil {
		return PetDetail{}, fmt.Errorf("resolve pet species %d: %w", ref.Species.ID, err)
	}
	return detail, nil
}

func (r *Resolver) mediaIcon(ctx context.Context, href string) (string, error) {
	var media Media
	if err := r.fetcher.FetchURL(ctx, href, &media); err != nil {
		return "", err
	}
	return media.First(), nil
}

func (r *Resolver) missingIcon(kind string, id int, reason string) {
	r.logger.WarnWithFields("Icon unavailable", map[string]interface{}{
		"kind":   kind,
		"id":     id,
		"reason": reason,
	})
}
