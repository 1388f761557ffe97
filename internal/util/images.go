package util

import "strings"

// PlaceholderImage is served when a product or spot has no image
const PlaceholderImage = "https://placehold.co/600x400/png"

// NormalizeImageURL maps empty image URLs to the placeholder and forces a /png
// suffix onto bare placehold.co URLs so image rendering gets a raster format.
func NormalizeImageURL(url string) string {
	u := strings.TrimSpace(url)
	if u == "" {
		return PlaceholderImage
	}

	if strings.HasPrefix(u, "https://placehold.co/") && !strings.Contains(u, "/png") {
		if strings.HasSuffix(u, "/") {
			return u + "png"
		}
		return u + "/png"
	}

	return u
}
