package core

// DraftUpdate is the closed set of fields a save_draft tool outcome may carry.
// A nil pointer (or nil LineItems) means "not supplied" and leaves the draft
// untouched; there is no way to express an explicit clear.
type DraftUpdate struct {
	Seller        *SellerUpdate
	Client        *ClientUpdate
	Dates         *DatesUpdate
	LineItems     []LineItem // non-nil replaces the whole list
	Payment       *PaymentUpdate
	InvoiceNumber *string
}

type SellerUpdate struct {
	CompanyName *string
	GSTNumber   *string
	State       *string
	StateCode   *string
}

type ClientUpdate struct {
	Name      *string
	Email     *string
	Address   *string
	GSTNumber *string
	State     *string
	StateCode *string
}

type DatesUpdate struct {
	InvoiceDate *string
	DueDate     *string
}

type PaymentUpdate struct {
	Terms             *string
	BankAccountName   *string
	BankAccountNumber *string
	BankIFSCCode      *string
}

// MergeResult reports the side effects of a merge the caller has to act on.
type MergeResult struct {
	// Stale is true when the merge invalidated a previously generated artifact.
	Stale bool
	// SupersededPath is the artifact the caller should delete when Stale.
	SupersededPath string
}

// touchesContent reports whether the update carries any non-nil field other
// than the invoice number.
func (u DraftUpdate) touchesContent() bool {
	if u.LineItems != nil {
		return true
	}
	if s := u.Seller; s != nil && anySet(s.CompanyName, s.GSTNumber, s.State, s.StateCode) {
		return true
	}
	if c := u.Client; c != nil && anySet(c.Name, c.Email, c.Address, c.GSTNumber, c.State, c.StateCode) {
		return true
	}
	if d := u.Dates; d != nil && anySet(d.InvoiceDate, d.DueDate) {
		return true
	}
	if p := u.Payment; p != nil && anySet(p.Terms, p.BankAccountName, p.BankAccountNumber, p.BankIFSCCode) {
		return true
	}
	return false
}

// IsZero reports whether the update carries no values at all.
func (u DraftUpdate) IsZero() bool {
	return u.InvoiceNumber == nil && !u.touchesContent()
}

// Merge folds update into draft and returns the new draft. It never rejects
// input: completeness is only checked when a document is generated.
//
// When the update changes content while an artifact exists, the artifact
// pointer is cleared, the final flag is reset and the old path is returned in
// the result so the caller can delete it.
func Merge(draft InvoiceDraft, update DraftUpdate) (InvoiceDraft, MergeResult) {
	out := draft.Clone()
	var res MergeResult

	if s := update.Seller; s != nil {
		set(&out.Seller.CompanyName, s.CompanyName)
		set(&out.Seller.GSTNumber, s.GSTNumber)
		set(&out.Seller.State, s.State)
		set(&out.Seller.StateCode, s.StateCode)
	}
	if c := update.Client; c != nil {
		set(&out.Client.Name, c.Name)
		set(&out.Client.Email, c.Email)
		set(&out.Client.Address, c.Address)
		set(&out.Client.GSTNumber, c.GSTNumber)
		set(&out.Client.State, c.State)
		set(&out.Client.StateCode, c.StateCode)
	}
	if d := update.Dates; d != nil {
		set(&out.Dates.InvoiceDate, d.InvoiceDate)
		set(&out.Dates.DueDate, d.DueDate)
	}
	if update.LineItems != nil {
		out.LineItems = make([]LineItem, len(update.LineItems))
		copy(out.LineItems, update.LineItems)
	}
	if p := update.Payment; p != nil {
		set(&out.Payment.Terms, p.Terms)
		set(&out.Payment.BankAccountName, p.BankAccountName)
		set(&out.Payment.BankAccountNumber, p.BankAccountNumber)
		set(&out.Payment.BankIFSCCode, p.BankIFSCCode)
	}
	set(&out.InvoiceNumber, update.InvoiceNumber)

	if out.CurrentArtifactPath != "" && update.touchesContent() {
		res = MergeResult{Stale: true, SupersededPath: out.CurrentArtifactPath}
		out.CurrentArtifactPath = ""
		out.IsFinal = false
	}
	return out, res
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func anySet(vals ...*string) bool {
	for _, v := range vals {
		if v != nil {
			return true
		}
	}
	return false
}
