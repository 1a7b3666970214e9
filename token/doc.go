// Package token decodes session tokens into claims and answers expiry
// questions about them.
//
// Tokens are compact JWTs issued by the backend. The client trusts their
// claims as-is: [Codec.Decode] checks structure only and never verifies the
// signature, which remains the issuing server's responsibility.
//
// # What this package must NOT do
//
//   - Verify signatures or consult key material when decoding.
//   - Touch cookies, Redis, or any other storage tier.
//   - Apply grace periods to expiry.
package token
