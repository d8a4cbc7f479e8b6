// Package api defines the request and response messages of the settleup RPC services.
//
// Messages are plain Go structs carried as JSON by the codec in package apiconnect.
// Amounts are decimals: they are written as JSON strings ("12.50") and read from
// either strings or numbers.
//
// Every request type has a JSON schema (see schema.go) that the codec checks before
// decoding, so handlers only ever see structurally valid requests. Business rules,
// such as positive amounts or shares summing to the total, are enforced by the
// services and reported with their own error codes.
package api
