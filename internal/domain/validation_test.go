package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateIdentity(t *testing.T) {
	t.Parallel()

	t.Run("address accepted", func(t *testing.T) {
		if err := ValidateIdentity("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty rejected", func(t *testing.T) {
		if err := ValidateIdentity(""); !errors.Is(err, ErrInvalidIdentity) {
			t.Fatalf("expected ErrInvalidIdentity, got %v", err)
		}
	})

	t.Run("too long rejected", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxIdentityLength+1)
		if err := ValidateIdentity(tooLong); !errors.Is(err, ErrInvalidIdentity) {
			t.Fatalf("expected ErrInvalidIdentity, got %v", err)
		}
	})

	t.Run("whitespace and slashes rejected", func(t *testing.T) {
		for _, id := range []string{"a b", "a/b", "a;b", "x\n"} {
			if err := ValidateIdentity(id); !errors.Is(err, ErrInvalidIdentity) {
				t.Fatalf("expected ErrInvalidIdentity for %q, got %v", id, err)
			}
		}
	})
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(1); err != nil {
		t.Fatalf("expected positive amount to pass, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != DefaultPageSize || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	limit, offset = ValidatePagination(MaxPageSize+10, 3)
	if limit != MaxPageSize || offset != 3 {
		t.Fatalf("expected capped limit, got limit=%d offset=%d", limit, offset)
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(errors.New("context"), ErrSellerNotProsumer)
	if got := ErrorCode(wrapped); got != "seller_not_prosumer" {
		t.Fatalf("expected seller_not_prosumer, got %s", got)
	}

	if got := ErrorCode(errors.New("boom")); got != "internal" {
		t.Fatalf("expected internal, got %s", got)
	}
}
