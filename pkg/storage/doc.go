// Package storage lays out downloaded albums on disk.
//
// Every album gets a directory named after its slugified title inside the
// output directory. Pictures are written atomically through a temporary
// file and a rename, so an interrupted run never leaves a partial file
// under its final name.
//
//	manager, err := storage.NewManager("kidplan-albums")
//	dir, err := manager.AlbumDir("Summer trip!")   // kidplan-albums/Summer-trip
//	if !manager.Exists(dir, "id-7.jpg") {
//	    _, err = manager.Save(dir, "id-7.jpg", body)
//	}
package storage
