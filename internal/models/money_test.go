package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyRoundsToTwoDecimals(t *testing.T) {
	m, err := NewMoneyFromString("19.999")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := m.String(); got != "20.00" {
		t.Fatalf("expected 20.00, got %s", got)
	}

	if _, err := NewMoneyFromString("not-a-number"); err == nil {
		t.Fatalf("garbage input must fail")
	}

	m = NewMoneyFromDecimal(decimal.NewFromFloat(58.5))
	if got := m.String(); got != "58.50" {
		t.Fatalf("expected 58.50, got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	m, _ := NewMoneyFromString("199")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"199.00"` {
		t.Fatalf("expected quoted fixed string, got %s", data)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"58.505"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.String() != "58.51" {
		t.Fatalf("expected 58.51, got %s", fromString.String())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`12.3`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.String() != "12.30" {
		t.Fatalf("expected 12.30, got %s", fromNumber.String())
	}
}
