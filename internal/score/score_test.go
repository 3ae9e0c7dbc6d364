package score

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreDefaults(t *testing.T) {
	t.Parallel()

	m := NewManager("task-1", nil, nil, nil)
	require.InDelta(t, DefaultScore, m.Score("http://unseen.test/page"), 1e-9)
}

func TestWhitelistAndBlacklistPrecedence(t *testing.T) {
	t.Parallel()

	m := NewManager("task-1", []string{"good.test"}, []string{"bad.test"}, nil)
	require.InDelta(t, WhitelistScore, m.Score("http://good.test/"), 1e-9)
	require.InDelta(t, WhitelistScore, m.Score("http://docs.good.test/x"), 1e-9, "subdomains inherit the whitelist")
	require.InDelta(t, BlacklistScore, m.Score("http://bad.test/"), 1e-9)
	require.InDelta(t, BlacklistScore, m.Score("http://cdn.bad.test/"), 1e-9)
}

func TestListedDomainsAreInvariantToUpdates(t *testing.T) {
	t.Parallel()

	m := NewManager("task-1", []string{"good.test"}, []string{"bad.test"}, nil)
	for i := 0; i < 50; i++ {
		m.Update("http://good.test/", EventError4xx5xx)
		m.Update("http://bad.test/", EventResourceFound)
	}
	require.InDelta(t, WhitelistScore, m.Score("http://good.test/"), 1e-9)
	require.InDelta(t, BlacklistScore, m.Score("http://bad.test/"), 1e-9)
}

func TestUpdateAppliesDeltas(t *testing.T) {
	t.Parallel()

	m := NewManager("task-1", nil, nil, nil)
	m.Update("http://site.test/", EventResourceFound)
	require.InDelta(t, 1.2, m.Score("http://site.test/"), 1e-9)
	m.Update("http://site.test/", EventError4xx5xx)
	require.InDelta(t, 0.7, m.Score("http://site.test/"), 1e-9)
	m.Update("http://site.test/", EventFastResponse)
	require.InDelta(t, 0.72, m.Score("http://site.test/"), 1e-9)
}

func TestScoreClamping(t *testing.T) {
	t.Parallel()

	m := NewManager("task-1", nil, nil, nil)
	for i := 0; i < 100; i++ {
		m.Update("http://up.test/", EventResourceFound)
		m.Update("http://down.test/", EventError4xx5xx)
	}
	require.InDelta(t, MaxScore, m.Score("http://up.test/"), 1e-9)
	require.InDelta(t, MinScore, m.Score("http://down.test/"), 1e-9)
}

func TestUnknownEventIsIgnored(t *testing.T) {
	t.Parallel()

	m := NewManager("task-1", nil, nil, nil)
	m.Update("http://site.test/", Event("MYSTERY"))
	require.InDelta(t, DefaultScore, m.Score("http://site.test/"), 1e-9)
}
