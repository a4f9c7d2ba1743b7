// Package keystore keeps the current JWK set of a running process and
// replaces it when the backing document changes.
//
// A Store holds an immutable *jwk.Set snapshot. Loading a new document
// swaps the snapshot only when parsing succeeds, so a corrupt document
// never removes keys that are in use. Callers that obtained a Signer or
// Verifier keep using it after a swap.
//
// A Watcher follows the document on disk with fsnotify and reloads the
// Store after writes settle:
//
//	store := keystore.NewStore(keystore.WithLogger(logger))
//	watcher, err := keystore.NewWatcher(path, store)
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start(ctx); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
package keystore
