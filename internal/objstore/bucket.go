package objstore

import "strings"

// maxBucketNameLen is the S3 bucket name length limit.
const maxBucketNameLen = 63

// BucketName derives a deterministic bucket name from an app name: lowercase,
// every character outside [a-z0-9-] replaced with '-', prefixed, leading and
// trailing '-' stripped, truncated to 63 characters. Collisions beyond the
// uniqueness constraint on app names are not defended against.
func BucketName(prefix, appName string) string {
	slug := strings.ToLower(appName)
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, slug)

	name := prefix + "-" + slug
	name = strings.Trim(name, "-")
	if len(name) > maxBucketNameLen {
		name = name[:maxBucketNameLen]
		name = strings.TrimRight(name, "-")
	}
	return name
}
