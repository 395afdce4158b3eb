package core

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

const (
	DraftNumberPrefix = "DRAFT-"
	FinalNumberPrefix = "INV-"
)

// Namespace is the artifact folder a generated document is written to.
type Namespace string

const (
	NamespaceTemp     Namespace = "temp"
	NamespaceInvoices Namespace = "invoices"
)

// Numbering is the outcome of the numbering policy for one generation.
type Numbering struct {
	Number    string
	Namespace Namespace
}

// Numberer mints invoice numbers of the form <prefix><unix seconds>. Minted
// timestamps are strictly increasing within a process so two documents
// generated in the same second never share a number.
type Numberer struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewNumberer returns a Numberer using now as its clock; nil means time.Now.
func NewNumberer(now func() time.Time) *Numberer {
	if now == nil {
		now = time.Now
	}
	return &Numberer{now: now}
}

// Decide applies the numbering policy:
//
//	draft request                      -> fresh DRAFT- number, temp namespace
//	final, prior empty or DRAFT-       -> fresh INV- number, invoices namespace
//	final, prior is a real number      -> prior reused, invoices namespace
func (n *Numberer) Decide(prior string, isDraft bool) Numbering {
	prior = strings.TrimSpace(prior)
	if isDraft {
		return Numbering{Number: n.mint(DraftNumberPrefix), Namespace: NamespaceTemp}
	}
	if prior == "" || IsDraftNumber(prior) {
		return Numbering{Number: n.mint(FinalNumberPrefix), Namespace: NamespaceInvoices}
	}
	return Numbering{Number: prior, Namespace: NamespaceInvoices}
}

func (n *Numberer) mint(prefix string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ts := n.now().Unix()
	if ts <= n.last {
		ts = n.last + 1
	}
	n.last = ts
	return fmt.Sprintf("%s%d", prefix, ts)
}

// IsDraftNumber reports whether number carries the draft prefix.
func IsDraftNumber(number string) bool {
	return strings.HasPrefix(strings.TrimSpace(number), DraftNumberPrefix)
}

// ArtifactPath returns the storage path for a numbered document,
// e.g. temp/DRAFT-1700000000.pdf or invoices/INV-1700000000.pdf. Path
// separators in manual numbers become dashes so the file stays inside its
// namespace.
func ArtifactPath(n Numbering) string {
	return path.Join(string(n.Namespace), fileSafe.Replace(n.Number)+".pdf")
}

var fileSafe = strings.NewReplacer("/", "-", "\\", "-", "..", "-")

// IsPermanentPath reports whether p lives in the permanent invoices namespace.
func IsPermanentPath(p string) bool {
	return strings.HasPrefix(path.Clean(p), string(NamespaceInvoices)+"/")
}
