// Package services holds the corpus state machine and settings resolution.
//
// CorpusManager runs extract, split, embed and index for one source at a time
// and swaps the finished index in only when every stage succeeded.
// SettingsService layers stored config and environment over the defaults.
package services
