package objstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketName(t *testing.T) {
	tests := []struct {
		name    string
		appName string
		want    string
	}{
		{name: "simple name", appName: "invoices", want: "app-invoices"},
		{name: "spaces and punctuation", appName: "My App!!", want: "app-my-app"},
		{name: "uppercase", appName: "ReportBuilder", want: "app-reportbuilder"},
		{name: "leading and trailing separators", appName: "--edge--", want: "app---edge"},
		{name: "unicode collapses to dashes", appName: "café 北京", want: "app-caf"},
		{name: "digits survive", appName: "backup2024", want: "app-backup2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketName("app", tt.appName))
		})
	}
}

func TestBucketName_Deterministic(t *testing.T) {
	first := BucketName("app", "My App!!")
	second := BucketName("app", "My App!!")
	assert.Equal(t, first, second)
}

func TestBucketName_Truncation(t *testing.T) {
	long := strings.Repeat("a", 100)
	name := BucketName("app", long)

	assert.LessOrEqual(t, len(name), 63)
	assert.True(t, strings.HasPrefix(name, "app-"))
	assert.False(t, strings.HasSuffix(name, "-"))
}

func TestBucketName_TruncationStripsTrailingDash(t *testing.T) {
	// 58 a's puts the separator run exactly at the 63-char cut
	appName := strings.Repeat("a", 58) + "!!!bbb"
	name := BucketName("app", appName)

	assert.LessOrEqual(t, len(name), 63)
	assert.False(t, strings.HasSuffix(name, "-"))
}
