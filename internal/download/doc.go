// Package download provides the orchestration that turns a track listing
// into downloaded files.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Extract the album from the listing text
//  2. Save the album manifest
//  3. Resolve every track page into media candidates
//  4. Download the first valid candidate, falling back to the next one
//  5. Tag MP3 files with ID3 metadata (optional)
//  6. Generate a playlist (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := manager.ProcessListing(ctx, clipboardText)
//	if err != nil {
//	    log.Fatal(err) // malformed listing, no tracks, or manifest I/O
//	}
//	fmt.Printf("%d downloaded, %d failed\n", report.Succeeded(), report.Failed())
//
// A failing track never stops the album: its error is recorded in the
// report and the next track starts.
//
// # Concurrency
//
// Tracks are downloaded one at a time unless settings.MaxConcurrentTracks
// is raised. File names are assigned before any download starts, so they do
// not depend on completion order. Each album directory is guarded by an
// advisory lock file so two processes never write the same album.
//
// # Progress Tracking
//
// Progress is reported via a callback receiving ProgressEvent values, and
// can be polled through GetProgress.
package download
