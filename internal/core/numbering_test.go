package core_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"invoice-agent/internal/core"

	"github.com/stretchr/testify/assert"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func TestNumberer_Decide(t *testing.T) {
	tests := []struct {
		name      string
		prior     string
		isDraft   bool
		wantExact string
		wantPref  string
		wantNS    core.Namespace
	}{
		{name: "draft without prior", prior: "", isDraft: true, wantPref: "DRAFT-", wantNS: core.NamespaceTemp},
		{name: "draft ignores final prior", prior: "INV-456", isDraft: true, wantPref: "DRAFT-", wantNS: core.NamespaceTemp},
		{name: "final from draft number", prior: "DRAFT-123", isDraft: false, wantPref: "INV-", wantNS: core.NamespaceInvoices},
		{name: "final without prior", prior: "", isDraft: false, wantPref: "INV-", wantNS: core.NamespaceInvoices},
		{name: "final keeps real number", prior: "INV-456", isDraft: false, wantExact: "INV-456", wantNS: core.NamespaceInvoices},
		{name: "final keeps manual number", prior: "TT-2024-001", isDraft: false, wantExact: "TT-2024-001", wantNS: core.NamespaceInvoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := core.NewNumberer(fixedClock(1700000000))
			got := n.Decide(tt.prior, tt.isDraft)
			assert.Equal(t, tt.wantNS, got.Namespace)
			if tt.wantExact != "" {
				assert.Equal(t, tt.wantExact, got.Number)
				return
			}
			assert.Equal(t, tt.wantPref+"1700000000", got.Number)
		})
	}
}

func TestNumberer_MonotonicWithinSecond(t *testing.T) {
	n := core.NewNumberer(fixedClock(1700000000))

	first := n.Decide("", true)
	second := n.Decide("", true)
	final := n.Decide(first.Number, false)

	assert.Equal(t, "DRAFT-1700000000", first.Number)
	assert.Equal(t, "DRAFT-1700000001", second.Number)
	assert.Equal(t, "INV-1700000002", final.Number)
}

func TestNumberer_ConcurrentMintsAreUnique(t *testing.T) {
	n := core.NewNumberer(fixedClock(1700000000))
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num := n.Decide("", false).Number
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "temp/DRAFT-1.pdf", core.ArtifactPath(core.Numbering{Number: "DRAFT-1", Namespace: core.NamespaceTemp}))
	assert.Equal(t, "invoices/INV-1.pdf", core.ArtifactPath(core.Numbering{Number: "INV-1", Namespace: core.NamespaceInvoices}))

	assert.Equal(t, "invoices/TT-2024-001.pdf", core.ArtifactPath(core.Numbering{Number: "TT/2024/001", Namespace: core.NamespaceInvoices}))

	assert.True(t, core.IsPermanentPath("invoices/INV-1.pdf"))
	assert.False(t, core.IsPermanentPath("temp/DRAFT-1.pdf"))
	assert.False(t, core.IsPermanentPath("invoicesX/INV-1.pdf"))
	assert.True(t, strings.HasPrefix(core.DraftNumberPrefix, "DRAFT"))
	assert.True(t, core.IsDraftNumber(" DRAFT-9"))
	assert.False(t, core.IsDraftNumber("INV-9"))
}
