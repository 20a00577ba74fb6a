// Package reportengine implements the stake-weighted content-moderation
// state machine inside the moderation context.
//
// The module owns the report lifecycle (file, vote, resolve), the post
// registry status transitions, the per-(report, voter) vote ledger and the
// reputation update rule. Escrow and payout are delegated to an external
// fungible-transfer ledger behind a port, and time is an external monotonic
// height counter. Business rules live in application/domain layers with
// infrastructure isolated behind ports and adapters.
package reportengine
