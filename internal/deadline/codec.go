package deadline

import (
	"strings"

	"scadenze/internal/models"
)

// The payload column packs category-specific fields into one pipe-delimited
// string. Decoding is total: missing trailing fields come back as empty
// strings and extra fields are ignored, so a malformed payload can never
// fail a read path. Validation happens at the handler boundary instead.

func split(payload string, n int) []string {
	out := make([]string, n)
	for i, f := range strings.Split(payload, "|") {
		if i >= n {
			break
		}
		out[i] = f
	}
	return out
}

type DomainFields struct {
	URL         string `json:"url"`
	Client      string `json:"client"`
	ContractRef string `json:"contract_ref"`
	Hosting     string `json:"hosting"`
	Owner       string `json:"domain_owner"`
	Note        string `json:"note"`
}

func DecodeDomain(payload string) DomainFields {
	f := split(payload, 6)
	return DomainFields{URL: f[0], Client: f[1], ContractRef: f[2], Hosting: f[3], Owner: f[4], Note: f[5]}
}

func (f DomainFields) Encode() string {
	return strings.Join([]string{f.URL, f.Client, f.ContractRef, f.Hosting, f.Owner, f.Note}, "|")
}

type MailboxFields struct {
	MailAddress string `json:"mail_address"`
	Tier        string `json:"tier"`
	Client      string `json:"client"`
	ContractRef string `json:"contract_ref"`
	Note        string `json:"note"`
}

func DecodeMailbox(payload string) MailboxFields {
	f := split(payload, 5)
	return MailboxFields{MailAddress: f[0], Tier: f[1], Client: f[2], ContractRef: f[3], Note: f[4]}
}

func (f MailboxFields) Encode() string {
	return strings.Join([]string{f.MailAddress, f.Tier, f.Client, f.ContractRef, f.Note}, "|")
}

type ContractFields struct {
	ContractType  string `json:"contract_type"`
	Client        string `json:"client"`
	ContractValue string `json:"contract_value"`
	RenewalTerms  string `json:"renewal_terms"`
}

func DecodeContract(payload string) ContractFields {
	f := split(payload, 4)
	return ContractFields{ContractType: f[0], Client: f[1], ContractValue: f[2], RenewalTerms: f[3]}
}

func (f ContractFields) Encode() string {
	return strings.Join([]string{f.ContractType, f.Client, f.ContractValue, f.RenewalTerms}, "|")
}

type SocialFields struct {
	Client       string `json:"client"`
	ContractRef  string `json:"contract_ref"`
	ContractDate string `json:"contract_date"`
	Note         string `json:"note"`
}

func DecodeSocial(payload string) SocialFields {
	f := split(payload, 4)
	return SocialFields{Client: f[0], ContractRef: f[1], ContractDate: f[2], Note: f[3]}
}

func (f SocialFields) Encode() string {
	return strings.Join([]string{f.Client, f.ContractRef, f.ContractDate, f.Note}, "|")
}

type SubscriptionFields struct {
	// Period is "1m", "3m", "6m" or "12m" for a renewable subscription and
	// empty for a one-time one. That single field gates status reconciliation,
	// notification derivation and renewal eligibility.
	Period    string `json:"renewal_period"`
	StartDate string `json:"start_date"`
	Cost      string `json:"cost"`
	Note      string `json:"note"`
}

func DecodeSubscription(payload string) SubscriptionFields {
	f := split(payload, 4)
	return SubscriptionFields{Period: f[0], StartDate: f[1], Cost: f[2], Note: f[3]}
}

func (f SubscriptionFields) Encode() string {
	return strings.Join([]string{f.Period, f.StartDate, f.Cost, f.Note}, "|")
}

func (f SubscriptionFields) OneTime() bool {
	return f.Period == ""
}

// IsOneTime reports whether d is a one-time subscription: subscription
// category with an empty renewal period. Every other category is recurring
// by definition.
func IsOneTime(d models.Deadline) bool {
	return d.Category == models.CategorySubscription && DecodeSubscription(d.Payload).OneTime()
}

// PeriodMonths maps a renewal period code to calendar months. Unknown or
// empty periods map to 0, which renders the deadline non-renewable.
func PeriodMonths(period string) int {
	switch period {
	case "1m":
		return 1
	case "3m":
		return 3
	case "6m":
		return 6
	case "12m":
		return 12
	}
	return 0
}
