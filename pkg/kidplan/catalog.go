package kidplan

import (
	"context"
	"fmt"
	"time"

	"kidplan-downloader/pkg/models"
)

// FetchAlbums pages through the album catalog and returns every album once.
// Any failed page fails the whole fetch.
func FetchAlbums(ctx context.Context, c *Client) ([]models.Album, error) {
	var albums []models.Album
	seen := make(map[string]struct{})
	skip := 0

	for {
		var records []albumRecord
		if err := c.GetJSON(ctx, GetAlbumsURL(c.baseURL, skip, time.Now()), &records); err != nil {
			return nil, fmt.Errorf("album catalog fetch failed: %w", err)
		}
		if len(records) == 0 {
			break
		}

		added := 0
		for _, record := range records {
			album := record.toAlbum(c.baseURL)
			if album.ID == "" {
				continue
			}
			if _, dup := seen[album.ID]; dup {
				continue
			}
			seen[album.ID] = struct{}{}
			albums = append(albums, album)
			added++
		}

		c.logger.DebugWithFields("Album catalog page", map[string]interface{}{
			"skip":    skip,
			"records": len(records),
			"new":     added,
		})

		if added == 0 || len(records) < AlbumPageSize {
			break
		}
		skip += len(records)
	}

	c.logger.InfoWithFields("Album catalog loaded", map[string]interface{}{
		"albums": len(albums),
	})
	return albums, nil
}
