// internal/infra/warmup/pool.go
package warmup

import (
	"math/rand"
	"time"

	"outreach_engine/internal/domain/campaign"
	"outreach_engine/internal/domain/lead"
)

// DefaultAddresses spreads filler traffic across mailbox providers so sender
// reputation builds against more than one service.
var DefaultAddresses = []string{
	"test@gmail.com",
	"warmup@outlook.com",
	"hello@yahoo.com",
	"info@protonmail.com",
	"contact@icloud.com",
	"support@mail.com",
	"admin@tutanota.com",
	"noreply@zoho.com",
}

// Pool hands out filler candidates by picking a random mailbox each time.
// The pool never runs dry; callers stop drawing when their quota does.
type Pool struct {
	addresses []string
	rnd       *rand.Rand
}

// NewPool uses the given addresses, or DefaultAddresses when none are
// configured.
func NewPool(addresses []string) *Pool {
	if len(addresses) == 0 {
		addresses = DefaultAddresses
	}
	return &Pool{
		addresses: addresses,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *Pool) Next() campaign.Candidate {
	addr := p.addresses[p.rnd.Intn(len(p.addresses))]
	return campaign.Candidate{
		Lead:     lead.Lead{Email: addr},
		Category: campaign.CategoryFiller,
	}
}
