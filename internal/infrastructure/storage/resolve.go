package storage

import "strings"

const (
	publicObjectPath = "/object/public/"
	authObjectPath   = "/object/"

	bucketScheme = "s3://"
)

// ResolveAudioURL rewrites a public storage reference into its authenticated
// equivalent: same bucket and path, different URL prefix.
//
//	Public:        /storage/v1/object/public/bucket/path
//	Authenticated: /storage/v1/object/bucket/path
//
// References already in the authenticated form pass through unchanged. This
// is a pure string transform, not a network call.
func ResolveAudioURL(audioURL string) string {
	return strings.Replace(audioURL, publicObjectPath, authObjectPath, 1)
}

// IsBucketRef reports whether the reference addresses a bucket object
// directly (s3://bucket/key) rather than an HTTP URL.
func IsBucketRef(ref string) bool {
	return strings.HasPrefix(ref, bucketScheme)
}

// SplitBucketRef splits s3://bucket/key into bucket and key.
func SplitBucketRef(ref string) (bucket, key string, ok bool) {
	if !IsBucketRef(ref) {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, bucketScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
