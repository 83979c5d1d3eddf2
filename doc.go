// Package idkit requests proofs of personhood from the World App.
//
// A Session encrypts a verification request with a fresh AES-256-GCM key and posts it
// to a bridge, which relays it to the World App without being able to read it. The key
// travels to the World App only inside the connect URL, which the user opens or scans.
// The session then polls the bridge and reports its progress as a stream of Status values,
// ending in either a Proof or an AppError.
package idkit
