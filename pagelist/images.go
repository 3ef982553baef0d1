package pagelist

import (
	"sort"

	"github.com/propkit/client-go/entity"
)

// OrderImages returns images in display order: primary images first, then
// ascending explicit display order, with original array position as the
// final tie-break. The sort is stable, so identical inputs always produce
// byte-identical output ordering; the first ordered image is the one a list
// row renders as its thumbnail.
func OrderImages(images []entity.Image) []entity.Image {
	out := make([]entity.Image, len(images))
	copy(out, images)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// PrimaryImageURL resolves the thumbnail URL for a record, or "" when it
// has no images.
func PrimaryImageURL(images []entity.Image) string {
	if len(images) == 0 {
		return ""
	}
	return OrderImages(images)[0].URL
}
