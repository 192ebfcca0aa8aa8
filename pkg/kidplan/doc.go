// Package kidplan talks to the Kidplan web application.
//
// A Client holds the cookie session, sends the fixed browser user agent and
// caps redirects. On top of it the package implements the sign-in flow
// (kindergarten lookup, selection and form login) and the paginated album
// catalog.
//
//	client, err := kidplan.NewClient(kidplan.WithTimeout(60 * time.Second))
//	kid, err := client.Connect(ctx, creds, 0, "Solstrålen")
//	albums, err := kidplan.FetchAlbums(ctx, client)
package kidplan
