package arr

import (
	"context"

	"github.com/telearr/telearr/internal/media"
)

// QualityProfiles lists the quality profiles configured in the service.
func (c *Client) QualityProfiles(ctx context.Context) ([]media.QualityProfile, error) {
	var resources []qualityProfileResource
	if err := c.get(ctx, "qualityProfile", &resources); err != nil {
		return nil, err
	}

	profiles := make([]media.QualityProfile, 0, len(resources))
	for _, r := range resources {
		profiles = append(profiles, media.QualityProfile{
			ID:             r.ID,
			Name:           r.Name,
			UpgradeAllowed: r.UpgradeAllowed,
		})
	}
	return profiles, nil
}

// RootFolders lists library root folders, minus any the operator excluded.
func (c *Client) RootFolders(ctx context.Context) ([]media.RootFolder, error) {
	var resources []rootFolderResource
	if err := c.get(ctx, "rootFolder", &resources); err != nil {
		return nil, err
	}

	resources = c.filterRootFolders(resources)
	folders := make([]media.RootFolder, 0, len(resources))
	for _, r := range resources {
		folders = append(folders, media.RootFolder{Path: r.Path, FreeSpace: r.FreeSpace})
	}
	return folders, nil
}

// Tags lists the service-side tags.
func (c *Client) Tags(ctx context.Context) ([]media.Tag, error) {
	var resources []tagResource
	if err := c.get(ctx, "tag", &resources); err != nil {
		return nil, err
	}

	tags := make([]media.Tag, 0, len(resources))
	for _, r := range resources {
		tags = append(tags, media.Tag{ID: r.ID, Label: r.Label})
	}
	return tags, nil
}
