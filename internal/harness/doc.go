// Package harness runs YAML conformance scenarios against the real engine.
//
// A scenario names a CUE registry directory, a card, and an ordered list of
// resolve steps. Each step calls Engine.Resolve exactly as a client would;
// the resulting effects form the trace, and every terminal decision is
// recorded into a fresh in-memory event store. Step expectations and
// scenario assertions are checked against that trace and store.
//
// Scenario format:
//
//	name: shipped_order
//	description: Tracking opens the carrier page after a preview
//	registry: ../registry
//	card:
//	  id: card-1
//	  mode: mail
//	  title: Your order has shipped
//	steps:
//	  - action:
//	      id: track_package
//	      context: {trackingNumber: 1Z999, carrier: UPS}
//	    expect:
//	      effect: present_preview
//	  - action:
//	      id: track_package
//	      context: {trackingNumber: 1Z999, carrier: UPS}
//	    confirmed: true
//	    expect:
//	      effect: navigate
//	      url: https://www.ups.com/track?tracknum=1Z999
//	assertions:
//	  - type: event_count
//	    count: 1
//
// Resolution IDs come from a sequence generator and seq numbers from a fresh
// logical clock, so traces are deterministic and suitable for golden files.
package harness
