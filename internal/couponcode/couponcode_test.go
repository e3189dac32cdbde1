package couponcode

import (
	"errors"
	"strings"
	"testing"
)

func TestIssueAndVerify(t *testing.T) {
	keeper := NewStaticKeeper("unit-test-secret")

	issued, err := Issue(keeper)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(issued.Prefix) != PrefixLength {
		t.Fatalf("prefix length = %d, want %d", len(issued.Prefix), PrefixLength)
	}
	if !strings.HasPrefix(issued.FullCode, issued.Prefix) {
		t.Fatalf("full code %q does not start with prefix %q", issued.FullCode, issued.Prefix)
	}

	code, err := Parse(issued.FullCode)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if code.Prefix != issued.Prefix {
		t.Fatalf("parsed prefix = %q, want %q", code.Prefix, issued.Prefix)
	}

	if err := Verify(keeper, code.Proof, issued.Secret); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	keeper := NewStaticKeeper("unit-test-secret")

	issued, err := Issue(keeper)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	code, err := Parse(issued.FullCode)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tampered := code.Proof[:len(code.Proof)-2] + "xx"
	if err := Verify(keeper, tampered, issued.Secret); !errors.Is(err, ErrProofInvalid) {
		t.Fatalf("Verify tampered = %v, want ErrProofInvalid", err)
	}

	// 非密文垃圾输入同样是普通的无效结果
	if err := Verify(keeper, "not-a-ciphertext", issued.Secret); !errors.Is(err, ErrProofInvalid) {
		t.Fatalf("Verify garbage = %v, want ErrProofInvalid", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	issuer := NewStaticKeeper("issuer-secret")
	other := NewStaticKeeper("other-secret")

	issued, err := Issue(issuer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	code, err := Parse(issued.FullCode)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if err := Verify(other, code.Proof, issued.Secret); !errors.Is(err, ErrProofInvalid) {
		t.Fatalf("Verify with wrong key = %v, want ErrProofInvalid", err)
	}
}

func TestParseRejectsShortCode(t *testing.T) {
	for _, raw := range []string{"", "ABC", "ABCDEFGH"} {
		if _, err := Parse(raw); !errors.Is(err, ErrCodeMalformed) {
			t.Fatalf("Parse(%q) = %v, want ErrCodeMalformed", raw, err)
		}
	}
}

func TestKeeperRequired(t *testing.T) {
	if _, err := Issue(nil); !errors.Is(err, ErrKeyUnavailable) {
		t.Fatalf("Issue(nil) = %v, want ErrKeyUnavailable", err)
	}
	empty := NewStaticKeeper("  ")
	if _, err := empty.Key(); !errors.Is(err, ErrKeyUnavailable) {
		t.Fatalf("empty keeper Key() = %v, want ErrKeyUnavailable", err)
	}
}
