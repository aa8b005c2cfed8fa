// Package reconcile merges data a browser kept locally into the remote copy
// after sign-in.
package reconcile

// Merge returns the local items missing remotely (to be uploaded) and the
// resulting state: remote items in their order followed by the uploads.
// Items are matched by key, so running Merge again after the upload yields
// nothing new. Local duplicates are uploaded once.
func Merge[T any](local, remote []T, key func(T) string) (toUpload, final []T) {
	known := make(map[string]bool, len(remote))
	final = make([]T, 0, len(remote)+len(local))
	for _, item := range remote {
		known[key(item)] = true
		final = append(final, item)
	}
	toUpload = []T{}
	for _, item := range local {
		k := key(item)
		if k == "" || known[k] {
			continue
		}
		known[k] = true
		toUpload = append(toUpload, item)
		final = append(final, item)
	}
	return toUpload, final
}
