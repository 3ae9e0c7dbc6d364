package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases host", "http://Example.COM/Path", "http://example.com/Path"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"strips default https port", "https://example.com:443/a", "https://example.com/a"},
		{"keeps explicit port", "http://example.com:8080/a", "http://example.com:8080/a"},
		{"drops fragment", "http://example.com/a#section", "http://example.com/a"},
		{"sorts query params", "http://example.com/a?b=2&a=1", "http://example.com/a?a=1&b=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	require.Equal(t, "example.com", NormalizeDomain("https://example.com/path"))
	require.Equal(t, "example.com", NormalizeDomain("Example.COM"))
	require.Equal(t, "example.com", NormalizeDomain("example.com:8080"))
	require.Equal(t, "example.com", NormalizeDomain("example.com/deep/path?q=1"))
	require.Equal(t, "", NormalizeDomain("   "))
}

func TestNormalizeDomainsDedupes(t *testing.T) {
	t.Parallel()

	got := NormalizeDomains([]string{"https://a.test/x", "A.TEST", "b.test", ""})
	require.Equal(t, []string{"a.test", "b.test"}, got)
}

func TestHostMatchesAny(t *testing.T) {
	t.Parallel()

	domains := []string{"a.com"}
	require.True(t, HostMatchesAny("a.com", domains))
	require.True(t, HostMatchesAny("sub.a.com", domains))
	require.False(t, HostMatchesAny("evila.com", domains), "suffix matching must not degrade to substring containment")
	require.False(t, HostMatchesAny("a.com.evil.org", domains))
	require.False(t, HostMatchesAny("", domains))
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"BFS", "DFS", "PRIORITY", "BIG_SITE_FIRST"} {
		s, err := ParseStrategy(raw)
		require.NoError(t, err)
		require.Equal(t, Strategy(raw), s)
	}
	_, err := ParseStrategy("RANDOM")
	require.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestNewCrawlConfigNormalizesDomainLists(t *testing.T) {
	t.Parallel()

	cfg, err := NewCrawlConfig(
		"http://a.test/",
		StrategyBFS,
		2, 0, 0,
		[]string{"https://a.test/path"},
		[]string{"BIG.test"},
		[]string{"bad.test:443"},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"a.test"}, cfg.AllowDomains)
	require.Equal(t, []string{"big.test"}, cfg.PriorityDomains)
	require.Equal(t, []string{"bad.test"}, cfg.Blacklist)
	require.Equal(t, DefaultMaxPages, cfg.MaxPages)
}

func TestNewCrawlConfigRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewCrawlConfig("", StrategyBFS, 1, 10, 0, nil, nil, nil)
	require.ErrorIs(t, err, ErrMissingStartURL)

	_, err = NewCrawlConfig("http://a.test/", "NOPE", 1, 10, 0, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidStrategy)
}
