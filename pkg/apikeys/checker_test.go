package apikeys

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryKeys map[string]Key

func (m memoryKeys) SiteKey(_ context.Context, prefix, id string) (Key, bool, error) {
	key, ok := m[prefix+"/"+id]
	return key, ok, nil
}

type failingKeys struct{ err error }

func (f failingKeys) SiteKey(context.Context, string, string) (Key, bool, error) {
	return Key{}, false, f.err
}

func TestCheckAPIKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	keys := memoryKeys{
		DefaultPrefix + "/site-1": {ID: "site-1", Key: "k3y", Token: "stored-token"},
	}
	checker := NewChecker(keys, WithClock(func() time.Time { return now }))

	cases := []struct {
		name   string
		id     string
		token  string
		prefix string
		want   bool
	}{
		{name: "stored token", id: "site-1", token: "stored-token", want: true},
		{name: "explicit prefix", id: "site-1", token: "stored-token", prefix: DefaultPrefix, want: true},
		{name: "current hour", id: "site-1", token: RotatingToken("k3y", now), want: true},
		{name: "previous hour", id: "site-1", token: RotatingToken("k3y", now.Add(-time.Hour)), want: true},
		{name: "two hours ago", id: "site-1", token: RotatingToken("k3y", now.Add(-2*time.Hour)), want: false},
		{name: "wrong token", id: "site-1", token: "nope", want: false},
		{name: "other prefix", id: "site-1", token: "stored-token", prefix: "other", want: false},
		{name: "unknown id", id: "site-9", token: "stored-token", want: false},
		{name: "blank token", id: "site-1", token: "", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := checker.CheckAPIKey(context.Background(), tc.id, tc.token, tc.prefix)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if got != tc.want {
				t.Fatalf("CheckAPIKey = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckAPIKey_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	checker := NewChecker(failingKeys{err: boom})

	_, err := checker.CheckAPIKey(context.Background(), "site-1", "token", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRotatingToken_UsesUTCHour(t *testing.T) {
	utc := time.Date(2024, 3, 9, 14, 59, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("X", 3*3600))
	if RotatingToken("k", utc) != RotatingToken("k", local) {
		t.Fatalf("rotating token must not depend on the location")
	}
	if RotatingToken("k", utc) == RotatingToken("k", utc.Add(time.Minute)) {
		t.Fatalf("token must change on the hour")
	}
}
