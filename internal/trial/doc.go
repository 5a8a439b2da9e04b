// Package trial implements a local, hardware-bound trial license gate.
//
// # Architecture Overview
//
// The system consists of four parts:
//
//   - Manager: trial record lifecycle (activate, persist, validate)
//   - replicaStore: encrypted record copies at redundant filesystem
//     locations
//   - Guard: user-facing decision gate and messaging
//   - security.Fingerprinter / security.TrialCipher: machine identity
//     and machine-bound encryption (internal/security)
//
// # Validation Flow
//
// A status check proceeds through a fixed ladder; the first failing
// rung is the terminal state:
//
//  1. No replica decrypts            -> not_activated
//  2. Record names another machine   -> invalid
//  3. Checksum mismatch              -> tampered
//  4. Start time ahead of the clock  -> clock_tampered
//  5. Past expiry                    -> expired
//  6. Otherwise                      -> active
//
// Every outcome is a well-formed Status value; nothing in the package
// reports ordinary misuse (missing files, corrupt data, wrong machine)
// as an error.
//
// # Machine Binding
//
// The record is encrypted under a key derived from the machine
// identifier, so copying the files to another machine leaves nothing
// decryptable there. The identifier itself is a SHA-256 digest over
// best-effort hardware signals with username and hostname as
// guaranteed fallbacks; see internal/security.
//
// # Threat Model
//
// This is a best-effort gate against casual circumvention, not a
// cryptographically adversarial scheme: deleting every replica resets
// the machine to not_activated, and an undecryptable record is
// indistinguishable from an absent one.
package trial
