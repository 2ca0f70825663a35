// Package sources contains the shared HTTP plumbing for portal and
// auction-house adapters.
//
// Every adapter speaks to a public website or API that was not built for
// programmatic access, so the client presents a browser user agent and
// throttles per host. Adapters live in subpackages (rightmove, zoopla,
// onthemarket, nestoria, auctionhouse, pugh), each implementing
// driven.SourceAdapter.
package sources
