package storage

import (
	"context"
	"fmt"
)

// MultiFetcher routes an audio reference to the fetcher that handles it:
// s3:// references go to the bucket fetcher, everything else over HTTP.
type MultiFetcher struct {
	http   *HTTPFetcher
	bucket *BucketFetcher
}

// NewMultiFetcher creates a fetcher mux; bucket may be nil when no
// S3-compatible endpoint is configured.
func NewMultiFetcher(httpFetcher *HTTPFetcher, bucketFetcher *BucketFetcher) *MultiFetcher {
	return &MultiFetcher{http: httpFetcher, bucket: bucketFetcher}
}

// Fetch downloads the audio bytes behind ref
func (m *MultiFetcher) Fetch(ctx context.Context, ref, accessToken string) ([]byte, error) {
	if IsBucketRef(ref) {
		if m.bucket == nil {
			return nil, fmt.Errorf("bucket reference %s but no storage endpoint configured", ref)
		}
		return m.bucket.Fetch(ctx, ref, accessToken)
	}
	return m.http.Fetch(ctx, ref, accessToken)
}
