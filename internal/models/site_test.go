package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceScan(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["a.example","b.example"]`)))
	assert.Equal(t, StringSlice{"a.example", "b.example"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)

	assert.Error(t, s.Scan(42))
	assert.Error(t, s.Scan([]byte(`{"not":"an array"}`)))
}

func TestStringSliceValue(t *testing.T) {
	v, err := StringSlice{"a.example"}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a.example"]`), v)

	v, err = StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.org", "example.org"},
		{"Example.ORG", "example.org"},
		{"https://example.org", "example.org"},
		{"http://www.example.org/", "example.org"},
		{"www.example.org", "example.org"},
		{" example.org ", "example.org"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.in), tt.in)
	}
}

func TestAllowsDomain(t *testing.T) {
	unrestricted := &SyndicationSite{}
	assert.True(t, unrestricted.AllowsDomain("anything.example"))
	assert.True(t, unrestricted.AllowsDomain(""))

	site := &SyndicationSite{AllowedDomains: StringSlice{"Example.org", "https://partner.news/"}}

	assert.True(t, site.AllowsDomain("example.org"))
	assert.True(t, site.AllowsDomain("https://www.example.org/"))
	assert.True(t, site.AllowsDomain("blog.example.org"))
	assert.True(t, site.AllowsDomain("partner.news"))

	assert.False(t, site.AllowsDomain("evil.test"))
	assert.False(t, site.AllowsDomain("example.org.evil.test"))
	assert.False(t, site.AllowsDomain("notexample.org"))
	assert.False(t, site.AllowsDomain(""))
}
