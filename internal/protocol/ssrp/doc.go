// Package ssrp owns the SQL Server Resolution Protocol wire contract.
//
// Ownership boundary:
// - message tag vocabulary
// - request datagram encoding
// - SVR_RESP decoding and validation
//
// Nothing here touches a socket. Callers hand encoded requests to a transport
// and pass exactly one received datagram to ParseServerResponse.
package ssrp
