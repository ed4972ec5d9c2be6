package identity_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/identity"
)

func TestUUIDIsStable(t *testing.T) {
	first := identity.UUID("asar:test:key")
	second := identity.UUID("asar:test:key")
	if first == uuid.Nil || first != second {
		t.Fatalf("expected stable non-nil ids, got %s and %s", first, second)
	}
	if identity.UUID("asar:test:other") == first {
		t.Fatalf("different keys must not collide")
	}
	if identity.UUID("   ") != uuid.Nil {
		t.Fatalf("blank keys map to the nil uuid")
	}
}

func TestPriceItemUUIDNormalizesInput(t *testing.T) {
	if identity.PriceItemUUID("gold", "ir_coin") != identity.PriceItemUUID(" GOLD ", "IR_COIN") {
		t.Fatalf("group and symbol casing must not change the id")
	}
	if identity.PriceItemUUID("gold", "USD") == identity.PriceItemUUID("currency", "USD") {
		t.Fatalf("groups are part of the key")
	}
}

func TestPageUUID(t *testing.T) {
	if identity.PageUUID("home", "fa") == identity.PageUUID("home", "en") {
		t.Fatalf("language is part of the key")
	}
}
