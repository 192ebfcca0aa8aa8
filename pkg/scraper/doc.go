// Package scraper runs the Kidplan album download loop.
//
// A Session holds the state shared between the shell and a run: the
// authenticated client, the cancel flag and the manifest. A Scraper walks
// albums and pictures strictly in order, skips pictures recorded in the
// manifest, saves the rest and emits one progress event per picture.
//
//	session := scraper.NewSession("kidplan-manifest.txt")
//	session.SetClient(client)
//	s := scraper.New(session, sink, log)
//	albums, err := s.FetchAlbums(ctx)
//	result, err := s.DownloadAlbums(ctx, albums, settings)
//
// Calling session.Cancel from another goroutine stops the run at the next
// album or picture boundary.
package scraper
