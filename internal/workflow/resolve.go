package workflow

import (
	"context"
	"fmt"
)

// ReferenceExtensions are probed in order after a catalog base path.
var ReferenceExtensions = []string{".jpg", ".JPG", ".jpeg", ".JPEG", ".png", ".PNG", ".webp", ".WEBP"}

// Resolve maps a label to a reference image. The label is matched against the
// catalog after trimming and lower-casing, then each extension candidate is
// probed in order under its own timeout; the first that exists wins.
//
// A probe that errors is recorded in Attempted and the next candidate is
// tried. When every probe errored the first candidate is returned as an
// Unverified locator, which is never Found.
func Resolve(ctx context.Context, rt *Runtime, label string) ReferenceLocator {
	if rt.Catalog == nil || rt.Store == nil {
		return ReferenceLocator{}
	}

	entry, ok := rt.Catalog.Lookup(label)
	if !ok {
		rt.logger().InfoContext(ctx, "no catalog entry for label", "label", label)
		return ReferenceLocator{}
	}

	var (
		attempted []string
		failures  int
	)

	for _, ext := range ReferenceExtensions {
		key := entry.BasePath + ext

		exists, err := probe(ctx, rt, key)
		if err != nil {
			failures++
			attempted = append(attempted, fmt.Sprintf("%s: %v", key, err))
			rt.logger().WarnContext(ctx, "reference probe failed", "key", key, "error", err)
			continue
		}

		attempted = append(attempted, key)
		if exists {
			return ReferenceLocator{
				Found:     true,
				Key:       key,
				URL:       rt.Store.PublicURL(key),
				Attempted: attempted,
			}
		}
	}

	if failures == len(ReferenceExtensions) {
		key := entry.BasePath + ReferenceExtensions[0]
		return ReferenceLocator{
			Key:        key,
			URL:        rt.Store.PublicURL(key),
			Unverified: true,
			Attempted:  attempted,
		}
	}

	return ReferenceLocator{Attempted: attempted}
}

func probe(ctx context.Context, rt *Runtime, key string) (bool, error) {
	pctx, cancel := withTimeout(ctx, rt.Timeouts.Probe)
	defer cancel()
	return rt.Store.Exists(pctx, key)
}
