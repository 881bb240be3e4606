// Package source resolves a track page into the audio URLs it declares.
//
// A track page embeds its audio as <source src="..."> elements. Each
// declared URL must carry the authorization parameters id, timestamp and
// code; anything else is rejected as an invalid media URL.
//
//	resolver := source.NewResolver(client, 30*time.Second)
//	candidates, err := resolver.Resolve(ctx, pageURL)
//	if err != nil {
//	    return err // wraps ErrFetch or ErrNoAudioSource
//	}
//	for media, err := range candidates {
//	    if err != nil {
//	        continue // wraps ErrInvalidMediaURL
//	    }
//	    download(media.URL)
//	}
package source
