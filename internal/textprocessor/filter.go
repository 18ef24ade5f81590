package textprocessor

import (
	"regexp"
	"strings"
)

// ForwardKeyword gates forwarding: only messages containing it verbatim
// (case-sensitive, anywhere in the text) are relayed.
const ForwardKeyword = "Leverage"

var (
	cancelledTickerRegex = regexp.MustCompile(`(?i)Manually\s+Cancelled\s+(#?[a-zA-Z0-9]+)`)
	tickerCancelledRegex = regexp.MustCompile(`(?i)(#[a-zA-Z0-9]+)\s+Manually\s+Cancelled`)
	closeNoHashRegex     = regexp.MustCompile(`(?i)(/Close)\s+([a-zA-Z0-9]+)`)
)

// Decision is the outcome of processing one inbound message.
// The zero value means drop.
type Decision struct {
	Forward bool
	Text    string
}

// Rewritten reports whether the forwarded text differs from the input.
func (d Decision) Rewritten(original string) bool {
	return d.Forward && d.Text != original
}

// ProcessMessage decides whether a message is forwarded and computes the
// text to forward. Cancellation phrases are rewritten into close
// commands in both word orders:
//
//	"Manually Cancelled BTCUSDT"  -> "/Close #BTCUSDT"
//	"Manually Cancelled #BTCUSDT" -> "/Close #BTCUSDT"
//	"#BTCUSDT Manually Cancelled" -> "/Close #BTCUSDT"
//
// Text that fails the ticker pattern is forwarded unchanged. The
// function is pure and never fails.
func ProcessMessage(text string) Decision {
	if !strings.Contains(text, ForwardKeyword) {
		return Decision{}
	}
	out := cancelledTickerRegex.ReplaceAllString(text, "/Close $1")
	out = tickerCancelledRegex.ReplaceAllString(out, "/Close $1")
	out = closeNoHashRegex.ReplaceAllString(out, "$1 #$2")
	return Decision{Forward: true, Text: out}
}
