package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rubiojr/mediasearch/pkg/storage"
	"golang.org/x/oauth2"
)

type mapStore map[string]string

func (m mapStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestTokenSource(t *testing.T) {
	tests := []struct {
		name    string
		store   Getter
		want    string
		wantErr error
	}{
		{name: "stored", store: mapStore{storage.TokenKey: "abc123"}, want: "abc123"},
		{name: "trimmed", store: mapStore{storage.TokenKey: "  abc123\n"}, want: "abc123"},
		{name: "missing", store: mapStore{}, wantErr: ErrNoToken},
		{name: "blank", store: mapStore{storage.TokenKey: "   "}, wantErr: ErrNoToken},
		{name: "nil store", store: nil, wantErr: ErrNoToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewTokenSource(tt.store).Token()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tok.AccessToken != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tok.AccessToken)
			}
			if tok.Type() != "Bearer" {
				t.Errorf("expected Bearer type, got %q", tok.Type())
			}
		})
	}
}

func TestBearer(t *testing.T) {
	if got := Bearer(nil); got != "" {
		t.Errorf("nil source: expected empty, got %q", got)
	}
	if got := Bearer(NewTokenSource(mapStore{})); got != "" {
		t.Errorf("missing token: expected empty, got %q", got)
	}
	if got := Bearer(NewTokenSource(failingStore{})); got != "" {
		t.Errorf("failing store: expected empty, got %q", got)
	}
	if got := Bearer(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "xyz"})); got != "xyz" {
		t.Errorf("static source: expected xyz, got %q", got)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"abc":              "***",
		"abcdefgh":         "********",
		"abcd1234efgh5678": "abcd********5678",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q): expected %q, got %q", in, want, got)
		}
	}
}
