package deadline

import (
	"testing"

	"scadenze/internal/models"
)

func TestDecodeDomainMissingFields(t *testing.T) {
	f := DecodeDomain("example.com|ACME")
	if f.URL != "example.com" || f.Client != "ACME" {
		t.Fatalf("unexpected fields: %+v", f)
	}
	if f.ContractRef != "" || f.Hosting != "" || f.Owner != "" || f.Note != "" {
		t.Fatalf("missing trailing fields should decode empty: %+v", f)
	}
}

func TestDecodeIgnoresExtraFields(t *testing.T) {
	f := DecodeContract("supply|ACME|1200|yearly|unexpected|junk")
	if f.RenewalTerms != "yearly" {
		t.Fatalf("RenewalTerms = %q, want %q", f.RenewalTerms, "yearly")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := MailboxFields{
		MailAddress: "info@acme.it",
		Tier:        "pro",
		Client:      "ACME",
		ContractRef: "C-42",
		Note:        "primary box",
	}
	if got := DecodeMailbox(in.Encode()); got != in {
		t.Fatalf("round trip mismatch: %+v != %+v", got, in)
	}
}

func TestIsOneTime(t *testing.T) {
	sub := func(payload string) models.Deadline {
		return models.Deadline{Category: models.CategorySubscription, Payload: payload}
	}

	if !IsOneTime(sub("|2024-01-01|49.99|")) {
		t.Error("empty period should be one-time")
	}
	if IsOneTime(sub("12m|2024-01-01|49.99|")) {
		t.Error("12m period should not be one-time")
	}
	if !IsOneTime(sub("")) {
		t.Error("empty payload subscription should be one-time")
	}
	if IsOneTime(models.Deadline{Category: models.CategoryDomain, Payload: ""}) {
		t.Error("non-subscription categories are never one-time")
	}
}

func TestPeriodMonths(t *testing.T) {
	cases := map[string]int{
		"1m": 1, "3m": 3, "6m": 6, "12m": 12,
		"": 0, "2w": 0, "24m": 0,
	}
	for period, want := range cases {
		if got := PeriodMonths(period); got != want {
			t.Errorf("PeriodMonths(%q) = %d, want %d", period, got, want)
		}
	}
}
