// Package transmission implements the TransmissionEngine pallet: dead-man
// switch, timed, and consent-threshold conditional NFT transfer
// (spec.md §4.5).
package transmission

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/nft"
)

// ProtocolKind selects how a transmission is triggered.
type ProtocolKind int

const (
	AtBlock ProtocolKind = iota
	AtBlockWithReset
	OnConsent
	OnConsentAtBlock
)

// CancellationKind controls when the owner may cancel the protocol.
type CancellationKind int

const (
	CancelAnytime CancellationKind = iota
	CancelUntilBlock
	CancelNever
)

// Cancellation bundles the cancellation policy with its optional block
// bound (used only by CancelUntilBlock).
type Cancellation struct {
	Kind  CancellationKind
	Block chain.BlockNumber
}

// Allows reports whether cancellation is currently permitted.
func (c Cancellation) Allows(now chain.BlockNumber) bool {
	switch c.Kind {
	case CancelAnytime:
		return true
	case CancelUntilBlock:
		return now < c.Block
	default:
		return false
	}
}

// Protocol is the TransmissionProtocol entity attached to an NFT.
type Protocol struct {
	NFTID        nft.ID
	Owner        chain.AccountID
	Recipient    chain.AccountID
	Kind         ProtocolKind
	TargetBlock  chain.BlockNumber // AtBlock, AtBlockWithReset, OnConsentAtBlock
	Threshold    int               // OnConsent, OnConsentAtBlock
	ConsentList  []chain.AccountID // optional allow-list gating who may consent
	Consented    []chain.AccountID
	Cancellation Cancellation
}

func (p *Protocol) isConsentProtocol() bool {
	return p.Kind == OnConsent || p.Kind == OnConsentAtBlock
}

func (p *Protocol) hasConsented(account chain.AccountID) bool {
	for _, c := range p.Consented {
		if c == account {
			return true
		}
	}
	return false
}

func (p *Protocol) allowedToConsent(account chain.AccountID) bool {
	if len(p.ConsentList) == 0 {
		return true
	}
	for _, a := range p.ConsentList {
		if a == account {
			return true
		}
	}
	return false
}
