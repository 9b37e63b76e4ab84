package profiles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/user/oneclick-vpn/internal/wgconf"
	"github.com/user/oneclick-vpn/resources"
)

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != Count {
		t.Fatalf("len(Names()) = %d", len(names))
	}
	if names[0] != "wg/client01.conf" || names[29] != "wg/client30.conf" {
		t.Fatalf("names = %v ... %v", names[0], names[29])
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"wg/client07.conf", "wg/client07.conf", false},
		{"client07", "wg/client07.conf", false},
		{"client07.conf", "wg/client07.conf", false},
		{" Client30 ", "wg/client30.conf", false},
		{"client00", "", true},
		{"client31", "", true},
		{"client7", "", true},
		{"other/client07.conf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownProfile) {
				t.Errorf("Normalize(%q) error = %v, want ErrUnknownProfile", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("wg/client07.conf"); got != "Client 07" {
		t.Errorf("Label = %q", got)
	}
	if got := Label("custom"); got != "custom" {
		t.Errorf("Label(custom) = %q", got)
	}
}

func TestBundledProfilesPassVerification(t *testing.T) {
	if err := VerifyRelease(resources.FS); err != nil {
		t.Fatalf("bundled resources failed verification:\n%v", err)
	}
}

func TestBundledClient07(t *testing.T) {
	text, err := Read(resources.FS, "client07")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := wgconf.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Endpoint() != "203.0.113.7:51820" {
		t.Fatalf("endpoint = %q", cfg.Endpoint())
	}
}

func TestStubRendersProfile(t *testing.T) {
	text, err := Stub(9)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"Address = 10.77.0.10/32\n",
		"DNS = 1.1.1.1\n",
		"Endpoint = 203.0.113.9:51820\n",
		"AllowedIPs = 0.0.0.0/0, ::/0\n",
		"PersistentKeepalive = 25\n",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("stub missing %q:\n%s", line, text)
		}
	}
	cfg, err := wgconf.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Endpoint() != "203.0.113.9:51820" || len(cfg.Peers) != 1 {
		t.Fatalf("parsed stub = %+v", cfg)
	}
}

func validFS(t *testing.T) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{}
	for n := 1; n <= Count; n++ {
		text, err := Stub(n)
		if err != nil {
			t.Fatal(err)
		}
		fsys[Name(n)] = &fstest.MapFile{Data: []byte(text)}
	}
	return fsys
}

func TestVerifyReportsProblems(t *testing.T) {
	fsys := validFS(t)
	delete(fsys, Name(3))
	fsys[Name(4)] = &fstest.MapFile{Data: []byte("[Interface]\nPrivateKey = x\n")}
	fsys[Name(5)] = &fstest.MapFile{Data: []byte("[Interface]\n[Peer]\n")}

	err := Verify(fsys)
	if err == nil {
		t.Fatal("Verify succeeded")
	}
	msg := err.Error()
	for _, want := range []string{
		"required WireGuard profile missing: client03.conf",
		"WireGuard profile client04.conf missing sections: Peer",
		"WireGuard profile client05.conf",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
	var pe *wgconf.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("parse failure not reported as ParseError")
	}
}

func TestVerifyMissingDirectory(t *testing.T) {
	if err := Verify(fstest.MapFS{}); err == nil || !strings.Contains(err.Error(), "directory missing") {
		t.Fatalf("Verify = %v", err)
	}
}

func TestVerifySecurityConfig(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		ok   bool
	}{
		{"system only", `<trust-anchors><certificates src="system"/></trust-anchors>`, true},
		{"cleartext off", `<base-config cleartextTrafficPermitted="false">`, true},
		{"user ca", `<certificates src="user"/>`, false},
		{"user ca spaced", `<certificates SRC = "USER"/>`, false},
		{"cleartext", `<domain-config cleartexttrafficpermitted="TRUE">`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySecurityConfig([]byte(tt.xml))
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("insecure config accepted")
			}
		})
	}
}

func TestGenerateStubs(t *testing.T) {
	dir := t.TempDir()
	if err := GenerateStubs(dir); err != nil {
		t.Fatal(err)
	}
	if err := Verify(os.DirFS(dir)); err != nil {
		t.Fatalf("generated profiles fail verification: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "wg", "client07.conf"))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := wgconf.Parse(string(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Interface.Addresses[0].String(); got != "10.77.0.8/32" {
		t.Errorf("address = %s", got)
	}
	if cfg.Peers[0].PersistentKeepalive != 25 || len(cfg.Peers[0].AllowedIPs) != 2 {
		t.Errorf("peer = %+v", cfg.Peers[0])
	}
}
