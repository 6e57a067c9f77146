package source

import (
	"errors"
	"testing"
)

func TestRepositoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		repo    Repository
		wantErr bool
	}{
		{
			name: "pinned with dir",
			repo: Repository{Name: "openssl-oqs", URL: "https://github.com/open-quantum-safe/openssl", Branch: "OpenSSL_1_0_2-stable", Commit: "01f211920aea41640c647f462e9d7c4c106e3240", Dir: "openssl-oqs"},
		},
		{
			name: "unpinned without dir",
			repo: Repository{Name: "openvpn-gui", URL: "https://github.com/Microsoft/openvpn-gui.git", Branch: "pqcrypto"},
		},
		{
			name:    "pinned without dir",
			repo:    Repository{Name: "openssl-oqs", URL: "https://github.com/open-quantum-safe/openssl", Commit: "01f2119"},
			wantErr: true,
		},
		{
			name:    "missing url",
			repo:    Repository{Name: "openvpn", Dir: "openvpn"},
			wantErr: true,
		},
		{
			name:    "nested dir",
			repo:    Repository{Name: "openvpn", URL: "https://example.com/openvpn", Dir: "../openvpn"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.repo.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRepository) {
					t.Fatalf("err = %v, want ErrInvalidRepository", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRepositoryLocalDir(t *testing.T) {
	r := Repository{URL: "https://github.com/Microsoft/openvpn-gui.git"}
	if got := r.LocalDir(); got != "openvpn-gui" {
		t.Errorf("LocalDir() = %q, want openvpn-gui", got)
	}
	r.Dir = "gui"
	if got := r.LocalDir(); got != "gui" {
		t.Errorf("LocalDir() = %q, want gui", got)
	}
}

func TestRepositoryString(t *testing.T) {
	pinned := Repository{Name: "openssl-oqs", Commit: "01f211920aea41640c647f462e9d7c4c106e3240", Dir: "openssl-oqs"}
	if got := pinned.String(); got != "openssl-oqs@01f211920aea" {
		t.Errorf("String() = %q", got)
	}
	branch := Repository{Name: "openvpn", Branch: "pqcrypto"}
	if got := branch.String(); got != "openvpn@pqcrypto" {
		t.Errorf("String() = %q", got)
	}
}
