// Package build runs the site build: it discovers content, renders every
// pillar and the homepage, and writes the static tree to the output
// directory.
//
// A build is a fixed sequence of stages. Each stage is timed and its result
// recorded on the Report and the metrics Recorder. A fatal stage error aborts
// the build; warnings (a missing assets directory, skipped topics, ledger
// failures) are collected and the build continues.
package build
