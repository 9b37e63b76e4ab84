package wgconf

import (
	"context"
	"net/netip"
	"strings"
	"testing"
)

func TestPublicKeyKnownVector(t *testing.T) {
	// RFC 7748 section 6.1, Alice.
	priv, err := ParseKey("dwdtCnMYpX08FsFyUbJmRd9ML4frwJkqsXf7pR25LCo=")
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	pub, err := priv.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if got, want := pub.Hex(), "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a"; got != want {
		t.Fatalf("public key = %s, want %s", got, want)
	}
}

func TestGeneratePrivateKeyIsClamped(t *testing.T) {
	k, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	if k.IsZero() {
		t.Fatal("generated zero key")
	}
	if k[0]&7 != 0 || k[31]&128 != 0 || k[31]&64 == 0 {
		t.Fatalf("key not clamped: %x", k)
	}
	again, err := ParseKey(k.String())
	if err != nil || again != k {
		t.Fatalf("ParseKey(String()) = %v, %v", again, err)
	}
}

func TestUAPI(t *testing.T) {
	cfg, err := Parse(fullConfig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ep, err := cfg.Peers[0].Endpoint.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ep != netip.MustParseAddrPort("203.0.113.7:51820") {
		t.Fatalf("resolved endpoint = %s", ep)
	}

	got := cfg.UAPI([]netip.AddrPort{ep})
	want := strings.Join([]string{
		"private_key=c809f3e5317e9575c9b5ed78b638b7ce530dabe85ddab614220241801ddf0669",
		"listen_port=51000",
		"replace_peers=true",
		"public_key=c53201039adba14be71f886da1d8dbe9eebded08cb111b75340078999aa9f038",
		"preshared_key=1c8828f7137324c58b2804928624ea2326f1674537c062e251e2753ca7fcca4c",
		"endpoint=203.0.113.7:51820",
		"persistent_keepalive_interval=25",
		"replace_allowed_ips=true",
		"allowed_ip=0.0.0.0/0",
		"allowed_ip=::/0",
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("UAPI mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestUAPIWithoutResolvedEndpoint(t *testing.T) {
	cfg, err := Parse(fullConfig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.UAPI(nil); strings.Contains(got, "endpoint=") {
		t.Fatalf("unexpected endpoint line in:\n%s", got)
	}
}
