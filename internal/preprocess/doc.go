// Package preprocess implements the categorical transformation pipeline:
// label encoding of every non-numeric column followed by chi2 percentile
// feature selection against the match label. A fitted Pipeline can be
// saved, loaded, and reapplied to new frames or single records.
package preprocess
