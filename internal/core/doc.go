// Package core provides the clipseal session and its commands.
//
// Commands exposed to front ends:
//   - SetSecret / ClearSecret: manage the session passphrase
//   - EncryptMessage / DecryptMessage: seal and open envelopes
//   - SaveSecret / LoadSecret / DeleteSavedSecret: OS keyring persistence
//   - PublishClipboard / ReceiveClipboard: sealed clipboard updates
//
// Errors returned by commands are internal. Anything crossing to an
// untrusted caller must go through PublicError, which collapses them to a
// small set of generic codes so that wrong-key and tampered input are
// indistinguishable.
package core
