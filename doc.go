package bagofcode

// Package bagofcode indexes JavaScript packages by the terms found in their
// source code and fits a latent semantic model over them.
//
// Overview
//
// The system is comprised of the following component stages:
//
// 1. Discovery
//
// A package listing (the npm explicit-installs JSON, or a plain "name url"
// text file, optionally xz-compressed) is reduced to the packages backed by a
// GitHub repository.  When GitHub credentials are available, repositories
// whose language breakdown is not overwhelmingly JavaScript (HTML and CSS
// excluded) are dropped.  Survivors are recorded in the "discovered" table.
//
// 2. Tokenizing
//
// Each checked-out package is tokenized: package.json is consulted for a
// directories.lib override, every .js file outside of test, docs, vendor and
// similar directories is split shell-style line by line, and the resulting
// per-package term counts are saved as a PackageRecord.
//
// 3. Fitting
//
// Every stored record is registered into a Corpus.  Fitting freezes the
// vocabulary (optionally narrowed to the top-K terms by count), computes
// entropy-based global term weights, the word frequency and TF-IDF matrices,
// and a thin singular value decomposition of whichever matrix was selected.
// The fitted Model is persisted as a protobuf snapshot.
//
// 4. Folding
//
// New packages are projected into a fitted model's term or latent space, and
// ranked against the training packages by cosine similarity.
//
// Storage is a BoltDB file by default, or PostgreSQL.
